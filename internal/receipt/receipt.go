// Package receipt рисует квитанции по налогу на недвижимость в PNG.
package receipt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// Renderer сохраняет квитанции в каталог dir и строит публичные ссылки на них
type Renderer struct {
	dir     string
	baseURL string
}

func NewRenderer(dir, publicBaseURL string) *Renderer {
	return &Renderer{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// FileName — имя файла квитанции: property_tax_<id>.png
func FileName(propertyID string) string {
	return "property_tax_" + safeID(propertyID) + ".png"
}

func (r *Renderer) Path(propertyID string) string {
	return filepath.Join(r.dir, FileName(propertyID))
}

func (r *Renderer) URL(propertyID string) string {
	return r.baseURL + "/receipts/" + FileName(propertyID)
}

// Render рисует квитанцию и атомарно записывает ее на диск
func (r *Renderer) Render(ctx context.Context, rec model.PropertyTaxRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := RenderPNG(rec)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create receipt directory: %w", err)
	}
	path := r.Path(rec.PropertyID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move receipt into place: %w", err)
	}
	return nil
}

// RenderPNG строит диаграмму начисления: сумма, оплачено, к оплате
func RenderPNG(rec model.PropertyTaxRecord) ([]byte, error) {
	if rec.Amount <= 0 {
		return nil, fmt.Errorf("property %s has no assessed amount", rec.PropertyID)
	}

	paid, outstanding := 0.0, rec.Amount
	if rec.Status == model.TaxPaid {
		paid, outstanding = rec.Amount, 0
	}

	bars := []chart.Value{
		bar(fmt.Sprintf("Assessed %d: INR %.0f", rec.Year, rec.Amount), rec.Amount, chart.ColorBlue),
		bar(fmt.Sprintf("Paid: INR %.0f", paid), paid, chart.ColorGreen),
		bar(fmt.Sprintf("Outstanding: INR %.0f", outstanding), outstanding, chart.ColorRed),
	}

	graph := chart.BarChart{
		Title: title(rec),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    1000,
		Height:   600,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    80,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render receipt for %s: %w", rec.PropertyID, err)
	}
	return buffer.Bytes(), nil
}

func bar(label string, value float64, color drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: value,
		Style: chart.Style{
			StrokeColor: color,
			FillColor:   color,
			FontSize:    12,
			FontColor:   chart.ColorBlack,
		},
	}
}

func title(rec model.PropertyTaxRecord) string {
	parts := []string{"Property Tax Receipt " + rec.PropertyID, rec.OwnerName}
	switch {
	case rec.ReceiptNo != "":
		parts = append(parts, "Receipt "+rec.ReceiptNo)
	case rec.BillNo != "":
		parts = append(parts, "Bill "+rec.BillNo)
	}
	parts = append(parts, strings.ToUpper(string(rec.Status)))
	return strings.Join(parts, " | ")
}

// safeID оставляет в идентификаторе только символы, допустимые в имени файла
func safeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, model.NormalizePropertyID(id))
}
