// Package curvefeed implements the ingestion half of the Treasury Curve
// Store's supplemented feature set: collectors that fetch today's
// par-yield curve and turn it into curve.Points ready for
// curve.NewSnapshot. It mirrors benritz-gilts' internal/collect package
// almost exactly (a Collector interface, an XLS report collector built
// on pbnjay/grate, and an HTML-table collector built on
// gocolly/colly/v2) with the gilt row scraper generalized into a
// tenor/yield row scraper against the US Treasury daily par-yield
// curve report instead of UK gilt prices.
package curvefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/pbnjay/grate"

	"github.com/quillhorn/bondengine/internal/curve"
)

// ErrDataUnavailable mirrors types.ErrDataUnavailable: the upstream
// report exists but has nothing usable for the requested date.
var ErrDataUnavailable = fmt.Errorf("curvefeed: data unavailable for requested date")

// Collected is the result of one collector run: a curve snapshot's raw
// ingredients plus the source tag, the way CollectedBonds pairs scraped
// rows with a source string.
type Collected struct {
	Source string
	AsOf   time.Time
	Points []curve.Point
}

// Collector is the ingestion contract, directly mirroring
// internal/collect.Collector's Collect(ctx, date)/Source() shape.
type Collector interface {
	Collect(ctx context.Context, date time.Time) (*Collected, error)
	Source() string
}

// standardTenors are the published par-yield curve tenors (in years),
// matching the Treasury daily yield-curve report's column order.
var standardTenors = []float64{
	1.0 / 12, 2.0 / 12, 3.0 / 12, 4.0 / 12, 6.0 / 12,
	1, 2, 3, 5, 7, 10, 20, 30,
}

// XLSCollector fetches the Treasury daily par-yield-curve XLS report
// and parses it with pbnjay/grate, the same library and workbook-driven
// shape as DMOCollector (internal/collect/dmo.go).
type XLSCollector struct {
	ReportURL string // template with two %d placeholders, both filled with the year
}

var SourceTreasuryXLS = "treasury-xls"

func NewXLSCollector() *XLSCollector {
	return &XLSCollector{
		ReportURL: "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/daily-treasury-rates.csv/%d/all?type=daily_treasury_yield_curve&field_tdr_date_value=%d&page&_format=xls",
	}
}

func (c *XLSCollector) Source() string { return SourceTreasuryXLS }

func (c *XLSCollector) Collect(ctx context.Context, date time.Time) (*Collected, error) {
	reqURL := fmt.Sprintf(c.ReportURL, date.Year(), date.Year())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("curvefeed: fetching %s: http %d", reqURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "treasury-curve-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	wb, err := grate.Open(tmp.Name())
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets, err := wb.List()
	if err != nil {
		return nil, err
	}

	target := date.Format("01/02/2006")
	var row []string
	var header []string

	for _, sheetName := range sheets {
		sheet, err := wb.Get(sheetName)
		if err != nil {
			return nil, err
		}
		first := true
		for sheet.Next() {
			r := sheet.Strings()
			if first {
				header = r
				first = false
				continue
			}
			if len(r) > 0 && strings.TrimSpace(r[0]) == target {
				row = r
				break
			}
		}
		if row != nil {
			break
		}
	}

	if row == nil {
		return nil, ErrDataUnavailable
	}

	points := parseYieldRow(header, row)
	if len(points) == 0 {
		return nil, ErrDataUnavailable
	}

	return &Collected{Source: c.Source(), AsOf: date, Points: points}, nil
}

// parseYieldRow pairs each standard tenor with its percentage column,
// skipping columns that fail to parse (a holiday-shortened report omits
// some tenors rather than erroring the whole row).
func parseYieldRow(header, row []string) []curve.Point {
	var points []curve.Point
	for i, tenor := range standardTenors {
		col := i + 1 // column 0 is the date
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		points = append(points, curve.Point{TenorYears: tenor, ParYield: v / 100.0})
	}
	return points
}

// HTMLCollector scrapes the Treasury's published daily-rates HTML table
// with gocolly/colly/v2, the same library and single-table OnHTML shape
// as DividendDataCollector (internal/collect/dividenddata.go), used as
// a fallback when the XLS report is unavailable.
type HTMLCollector struct {
	PageURL string
}

var SourceTreasuryHTML = "treasury-html"

func NewHTMLCollector() *HTMLCollector {
	return &HTMLCollector{
		PageURL: "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/TextView?type=daily_treasury_yield_curve",
	}
}

func (c *HTMLCollector) Source() string { return SourceTreasuryHTML }

func (c *HTMLCollector) Collect(ctx context.Context, date time.Time) (*Collected, error) {
	target := date.Format("01/02/2006")

	var header []string
	var matchedRow []string

	col := colly.NewCollector()
	col.OnHTML("table.usa-table tr", func(e *colly.HTMLElement) {
		var cells []string
		e.ForEach("td, th", func(_ int, el *colly.HTMLElement) {
			cells = append(cells, strings.TrimSpace(el.Text))
		})
		if len(cells) == 0 {
			return
		}
		if header == nil {
			header = cells
			return
		}
		if cells[0] == target {
			matchedRow = cells
		}
	})

	reqURL := c.PageURL + "&field_tdr_date_value=" + url.QueryEscape(strconv.Itoa(date.Year()))
	if err := col.Visit(reqURL); err != nil {
		return nil, err
	}

	if matchedRow == nil {
		return nil, ErrDataUnavailable
	}

	points := parseYieldRow(header, matchedRow)
	if len(points) == 0 {
		return nil, ErrDataUnavailable
	}

	return &Collected{Source: c.Source(), AsOf: date, Points: points}, nil
}
