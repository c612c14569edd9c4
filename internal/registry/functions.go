package registry

import (
	"context"
	"fmt"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/indicator"
)

// DefaultNewsLimit caps the news operation when Env.NewsLimit is unset.
const DefaultNewsLimit = 10

const (
	tickerDesc       = "The stock ticker symbol for a company. Note FB is renamed to Meta"
	tickerDescPlain  = "The stock ticker symbol for a company."
	smaWindowDesc    = "This is the time frame to calculate the SMA value"
	emaWindowDesc    = "The time frame (in days) to calculate the EMA value."
	rsiPeriodDesc    = "The smoothing period (in days) of the RSI. Defaults to 14."
	personalFinanceF = "personal_finance"
)

// TickerArgs is the argument set of single-ticker operations.
type TickerArgs struct {
	Ticker string
}

// WindowArgs is the argument set of moving-average operations.
type WindowArgs struct {
	Ticker string
	Window int
}

// RSIArgs is the argument set of calculate_RSI.
type RSIArgs struct {
	Ticker string
	Period int
}

func bindTicker(a Args) TickerArgs {
	return TickerArgs{Ticker: a.String("ticker")}
}

func bindWindow(a Args) WindowArgs {
	return WindowArgs{Ticker: a.String("ticker"), Window: a.Int("window")}
}

func bindRSI(a Args) RSIArgs {
	p := a.Int("period")
	if p == 0 {
		p = indicator.DefaultRSIPeriod
	}
	return RSIArgs{Ticker: a.String("ticker"), Period: p}
}

func tickerArg(desc string) core.ArgSpec {
	return core.ArgSpec{Name: "ticker", Type: core.ArgString, Required: true, Description: desc}
}

// Default returns the full catalogue in its advertised order.
func Default() *Registry {
	r, err := New(
		op(core.FunctionSpec{
			Name:        "get_stock_price",
			Description: "Gets the latest stock price given the ticker symbol of the company.",
			Args:        []core.ArgSpec{tickerArg(tickerDesc)},
		}, bindTicker, getStockPrice),
		op(core.FunctionSpec{
			Name:        "calculate_SMA",
			Description: "Calculates the simple moving average of the given the ticker symbol of the company",
			Args: []core.ArgSpec{
				tickerArg(tickerDesc),
				{Name: "window", Type: core.ArgInteger, Required: true, Positive: true, Description: smaWindowDesc},
			},
		}, bindWindow, calculateSMA),
		op(core.FunctionSpec{
			Name:        "calculate_EMA",
			Description: "Calculates the Exponential Moving Average (EMA) of a stock over the past year.",
			Args: []core.ArgSpec{
				tickerArg(tickerDescPlain),
				{Name: "window", Type: core.ArgInteger, Required: true, Positive: true, Description: emaWindowDesc},
			},
		}, bindWindow, calculateEMA),
		op(core.FunctionSpec{
			Name:        "calculate_RSI",
			Description: "Calculates the Relative Strength Index (RSI) of a stock over the past year.",
			Args: []core.ArgSpec{
				tickerArg(tickerDescPlain),
				{Name: "period", Type: core.ArgInteger, Positive: true, Default: indicator.DefaultRSIPeriod, Description: rsiPeriodDesc},
			},
		}, bindRSI, calculateRSI),
		op(core.FunctionSpec{
			Name:        "calculate_MACD",
			Description: "Calculates the Moving Average Convergence Divergence (MACD) for a stock, including the signal and MACD histogram values over the past year.",
			Args:        []core.ArgSpec{tickerArg(tickerDescPlain)},
		}, bindTicker, calculateMACD),
		op(core.FunctionSpec{
			Name:        "plot_stock_price",
			Description: "Plots and saves a graph of the stock price over the last year.",
			Args:        []core.ArgSpec{tickerArg(tickerDescPlain)},
		}, bindTicker, plotStockPrice),
		op(core.FunctionSpec{
			Name:        "stock_holder_info",
			Description: "Retrieves information about the institutional holders of the specified stock.",
			Args:        []core.ArgSpec{tickerArg(tickerDescPlain)},
		}, bindTicker, stockHolderInfo),
		op(core.FunctionSpec{
			Name:        "news",
			Description: "Fetches the latest news related to the specified stock.",
			Args:        []core.ArgSpec{tickerArg(tickerDescPlain)},
		}, bindTicker, latestNews),
		op(core.FunctionSpec{
			Name:        personalFinanceF,
			Description: "A placeholder function related to personal finance features for a specified stock.",
			Args:        []core.ArgSpec{tickerArg(tickerDescPlain)},
		}, bindTicker, personalFinance),
	)
	if err != nil {
		panic(err)
	}
	return r
}

func closes(ctx context.Context, env Env, ticker string) ([]float64, error) {
	series, err := fetch(ctx, env, ticker)
	if err != nil {
		return nil, err
	}
	return series.Closes(), nil
}

func fetch(ctx context.Context, env Env, ticker string) (core.PriceSeries, error) {
	if env.Series == nil {
		return core.PriceSeries{}, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("no price series provider configured"))
	}
	return env.Series.FetchDailyCloses(ctx, ticker, env.lookback())
}

func getStockPrice(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	c, err := closes(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	v, err := indicator.LatestPrice(c)
	if err != nil {
		return nil, err
	}
	return core.Scalar(v), nil
}

func calculateSMA(ctx context.Context, env Env, a WindowArgs) (core.Result, error) {
	c, err := closes(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	v, err := indicator.SimpleMovingAverage(c, a.Window)
	if err != nil {
		return nil, err
	}
	return core.Scalar(v), nil
}

func calculateEMA(ctx context.Context, env Env, a WindowArgs) (core.Result, error) {
	c, err := closes(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	v, err := indicator.ExponentialMovingAverage(c, a.Window)
	if err != nil {
		return nil, err
	}
	return core.Scalar(v), nil
}

func calculateRSI(ctx context.Context, env Env, a RSIArgs) (core.Result, error) {
	c, err := closes(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	v, err := indicator.RelativeStrengthIndex(c, a.Period)
	if err != nil {
		return nil, err
	}
	return core.Scalar(v), nil
}

func calculateMACD(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	c, err := closes(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	m, err := indicator.MACD(c)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func plotStockPrice(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	if env.Charts == nil {
		return nil, core.WrapError(core.ErrNotImplemented, fmt.Errorf("chart rendering is not configured"))
	}
	series, err := fetch(ctx, env, a.Ticker)
	if err != nil {
		return nil, err
	}
	ref, err := env.Charts.Render(ctx, env.Scope, series)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func stockHolderInfo(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	if env.Holders == nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("no holder provider configured"))
	}
	holders, err := env.Holders.FetchHolders(ctx, a.Ticker)
	if err != nil {
		return nil, err
	}
	return core.HolderTable(holders), nil
}

func latestNews(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	if env.News == nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("no news provider configured"))
	}
	limit := env.NewsLimit
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	items, err := env.News.GetNews(ctx, a.Ticker, limit)
	if err != nil {
		return nil, err
	}
	return core.NewsList(items), nil
}

func personalFinance(ctx context.Context, env Env, a TickerArgs) (core.Result, error) {
	return nil, core.WrapError(core.ErrNotImplemented, fmt.Errorf("%s for %s", personalFinanceF, a.Ticker))
}
