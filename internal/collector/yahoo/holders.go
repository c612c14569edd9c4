package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/newthinker/tickertalk/internal/core"
)

const holderDateLayout = "Jan 2, 2006"

// FetchHolders scrapes the institutional holders table from the quote page.
func (c *Client) FetchHolders(ctx context.Context, ticker string) ([]core.Holder, error) {
	if err := validateSymbol(ticker); err != nil {
		return nil, err
	}
	symbol := toYahooSymbol(ticker)
	u := fmt.Sprintf("%s/%s/holders", c.config.QuotePage, url.PathEscape(symbol))

	resp, err := c.get(ctx, u, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching holders for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("parsing holders page: %w", err))
	}

	return parseHolders(doc)
}

// parseHolders picks the institutional table when the page labels one,
// otherwise the first table with holder columns.
func parseHolders(doc *goquery.Document) ([]core.Holder, error) {
	var chosen *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		cols := headerIndex(tbl)
		if _, ok := cols["holder"]; !ok {
			return true
		}
		if chosen == nil {
			chosen = tbl
		}
		label := strings.ToLower(tbl.Closest("section").Find("h3").First().Text())
		if strings.Contains(label, "institutional") {
			chosen = tbl
			return false
		}
		return true
	})

	if chosen == nil {
		return nil, core.WrapError(core.ErrUnknownTicker, fmt.Errorf("no holders table found"))
	}

	cols := headerIndex(chosen)
	var holders []core.Holder
	chosen.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}

		name := cell("holder")
		if name == "" {
			return
		}
		h := core.Holder{Name: name}
		h.Shares, _ = strconv.ParseInt(stripNumber(cell("shares")), 10, 64)
		h.PercentOut, _ = strconv.ParseFloat(stripNumber(cell("% out")), 64)
		h.Value, _ = strconv.ParseFloat(stripNumber(cell("value")), 64)
		if d, err := time.Parse(holderDateLayout, cell("date reported")); err == nil {
			h.DateReported = d
		}
		holders = append(holders, h)
	})

	return holders, nil
}

func headerIndex(tbl *goquery.Selection) map[string]int {
	cols := make(map[string]int)
	tbl.Find("thead th").Each(func(i int, th *goquery.Selection) {
		cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
	})
	return cols
}

func stripNumber(s string) string {
	return strings.NewReplacer(",", "", "%", "", "$", "").Replace(strings.TrimSpace(s))
}
