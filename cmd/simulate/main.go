package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/observability"
	"token-holder-lab/internal/providers/market"
	"token-holder-lab/internal/swapsim"
)

func main() {
	poolAddr := flag.String("pool", "", "Pool contract address (fetches live reserves)")
	chainName := flag.String("chain", "bsc", "Chain the pool lives on (bsc, ethereum, solana)")
	explorerURL := flag.String("explorer-url", "", "DEX explorer API base URL (required with --pool)")
	tokenIn := flag.String("token-in", "", "Input token contract address (resolves direction from pool)")
	amount := flag.Float64("amount", 0, "Input amount to swap")
	fee := flag.Float64("fee", -1, "Fee rate override as a fraction, e.g. 0.0025 (defaults to the pool's fee tier)")
	direction := flag.String("direction", "", "Swap direction: base-in or quote-in (required in offline mode)")
	reserveBase := flag.Float64("reserve-base", 0, "Base reserve for offline simulation")
	reserveQuote := flag.Float64("reserve-quote", 0, "Quote reserve for offline simulation")
	baseSymbol := flag.String("base-symbol", "BASE", "Base token symbol for offline output")
	quoteSymbol := flag.String("quote-symbol", "QUOTE", "Quote token symbol for offline output")
	watch := flag.String("watch", "", "WebSocket endpoint: re-simulate on every live reserve update")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address in watch mode (e.g. :9090)")
	flag.Parse()

	if *amount <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --amount must be positive")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pool domain.PoolState
		dir  domain.SwapDirection
		err  error
	)

	if *poolAddr != "" {
		pool, dir, err = fetchPool(ctx, *explorerURL, *chainName, *poolAddr, *tokenIn, *direction)
	} else {
		pool, dir, err = offlinePool(*reserveBase, *reserveQuote, *baseSymbol, *quoteSymbol, *direction)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	feeRate := pool.FeeRate
	if *fee >= 0 {
		feeRate = *fee
	}

	result, err := swapsim.Simulate(pool, *amount, feeRate, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating swap: %v\n", err)
		os.Exit(1)
	}
	printResult(pool, result)

	if *watch != "" {
		if *poolAddr == "" {
			fmt.Fprintln(os.Stderr, "Error: --watch requires --pool")
			os.Exit(1)
		}
		if err := watchPool(ctx, *watch, *metricsAddr, *poolAddr, pool, *amount, feeRate, dir); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "Error watching pool: %v\n", err)
			os.Exit(1)
		}
	}
}

// fetchPool pulls live reserves and resolves the swap direction.
func fetchPool(ctx context.Context, explorerURL, chainName, poolAddr, tokenIn, direction string) (domain.PoolState, domain.SwapDirection, error) {
	if explorerURL == "" {
		return domain.PoolState{}, "", fmt.Errorf("--explorer-url is required with --pool")
	}

	client := market.NewClient(explorerURL, "")
	data, err := client.FetchPool(ctx, domain.Chain(chainName), poolAddr)
	if err != nil {
		return domain.PoolState{}, "", err
	}

	var dir domain.SwapDirection
	if tokenIn != "" {
		dir, err = data.DirectionFor(tokenIn)
		if err != nil {
			return domain.PoolState{}, "", err
		}
	} else {
		dir, err = parseDirection(direction)
		if err != nil {
			return domain.PoolState{}, "", err
		}
	}
	return data.PoolState(), dir, nil
}

// offlinePool builds a pool state from explicit reserves.
func offlinePool(reserveBase, reserveQuote float64, baseSymbol, quoteSymbol, direction string) (domain.PoolState, domain.SwapDirection, error) {
	if reserveBase <= 0 || reserveQuote <= 0 {
		return domain.PoolState{}, "", fmt.Errorf("offline mode needs --reserve-base and --reserve-quote (or use --pool)")
	}
	dir, err := parseDirection(direction)
	if err != nil {
		return domain.PoolState{}, "", err
	}
	return domain.PoolState{
		BaseSymbol:   baseSymbol,
		QuoteSymbol:  quoteSymbol,
		ReserveBase:  reserveBase,
		ReserveQuote: reserveQuote,
	}, dir, nil
}

func parseDirection(s string) (domain.SwapDirection, error) {
	switch s {
	case "base-in":
		return domain.SwapBaseIn, nil
	case "quote-in":
		return domain.SwapQuoteIn, nil
	case "":
		return "", fmt.Errorf("--direction is required (base-in or quote-in)")
	default:
		return "", fmt.Errorf("unknown direction %q (want base-in or quote-in)", s)
	}
}

// watchPool re-runs the simulation on every live reserve tick until
// interrupted.
func watchPool(ctx context.Context, endpoint, metricsAddr, poolAddr string, pool domain.PoolState, amount, feeRate float64, dir domain.SwapDirection) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	stream := market.NewReserveStream(endpoint, poolAddr, nil, log)
	if metricsAddr != "" {
		m := observability.NewMetrics("")
		stream = stream.WithMetrics(m)
		go func() {
			if err := http.ListenAndServe(metricsAddr, m.Handler()); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}
	go stream.Run(ctx)

	fmt.Println("watching live reserves, Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, ok := <-stream.Ticks():
			if !ok {
				return ctx.Err()
			}
			pool.ReserveBase = tick.Reserve0
			pool.ReserveQuote = tick.Reserve1
			result, err := swapsim.Simulate(pool, amount, feeRate, dir)
			if err != nil {
				log.Warn("simulation failed on tick", zap.Error(err))
				continue
			}
			fmt.Printf("[ts=%d] ", tick.Timestamp)
			printResult(pool, result)
		}
	}
}

func printResult(pool domain.PoolState, r *domain.SwapResult) {
	inSym, outSym := pool.BaseSymbol, pool.QuoteSymbol
	if r.Direction == domain.SwapQuoteIn {
		inSym, outSym = pool.QuoteSymbol, pool.BaseSymbol
	}

	fmt.Printf("swap %.6f %s -> %.6f %s\n", r.AmountIn, inSym, r.AmountOut, outSym)
	fmt.Printf("  effective in (after fee): %.6f %s\n", r.EffectiveIn, inSym)
	fmt.Printf("  spot price:      %.10f %s/%s\n", r.SpotPrice, outSym, inSym)
	fmt.Printf("  execution price: %.10f %s/%s\n", r.ExecutionPrice, outSym, inSym)
	fmt.Printf("  price impact:    %.6f%%\n", r.PriceImpactPct)
	fmt.Printf("  reserves after:  %.6f %s / %.6f %s\n",
		r.ReserveInAfter, inSym, r.ReserveOutAfter, outSym)
}
