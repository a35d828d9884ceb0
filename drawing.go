package main

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/afrah-create/agro-advisor/advisor-api/advisor"
)

var (
	reportFontOnce sync.Once
	reportFont     *truetype.Font
	reportFontErr  error
)

func reportFontFace(size float64) (font.Face, error) {
	reportFontOnce.Do(func() {
		reportFont, reportFontErr = truetype.Parse(goregular.TTF)
	})
	if reportFontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", reportFontErr)
	}
	return truetype.NewFace(reportFont, &truetype.Options{Size: size}), nil
}

func setFontFace(dc *gg.Context, size float64) error {
	face, err := reportFontFace(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	return nil
}

// drawReportCard renders an 800x480 summary card for an advisory report,
// sized for the same e-ink class display the dashboard targets.
func drawReportCard(report *advisor.Report) (*gg.Context, error) {
	width := 800
	height := 480

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	dc := gg.NewContextForRGBA(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	if err := drawCardHeading(dc, "Agricultural Advisory", report.GeneratedAt.Format("Monday, 02 January 2006")); err != nil {
		return nil, err
	}
	if err := drawSummaryMetrics(dc, report); err != nil {
		return nil, err
	}
	if err := drawCropList(dc, report.ExecutiveSummary.RecommendedCrops); err != nil {
		return nil, err
	}
	if err := drawPlanEconomics(dc, report.DetailedAnalysis.CroppingPlan.Summary); err != nil {
		return nil, err
	}
	if err := drawRiskCounts(dc, report.RiskAssessment); err != nil {
		return nil, err
	}
	if err := drawTopAction(dc, report.ActionableRecommendations); err != nil {
		return nil, err
	}
	return dc, nil
}

func drawCardHeading(dc *gg.Context, text string, dateText string) error {
	dc.SetHexColor("#000000")

	if err := setFontFace(dc, 22); err != nil {
		return err
	}
	drawStringLeft(dc, text, 10, 10)

	if err := setFontFace(dc, 17.5); err != nil {
		return err
	}
	w, h := dc.MeasureString(dateText)
	dc.DrawString(dateText, float64(dc.Width())-w-10, 10+h)

	dc.SetLineWidth(1)
	dc.DrawLine(10, 50, float64(dc.Width())-10, 50)
	dc.Stroke()
	return nil
}

func drawSummaryMetrics(dc *gg.Context, report *advisor.Report) error {
	summary := report.ExecutiveSummary

	status := "Valid"
	if !summary.OverallRecommendationValid {
		status = "Review"
	}

	metrics := []struct {
		value string
		label string
	}{
		{fmt.Sprintf("%.2f", summary.SoilQualityScore), "Soil Quality"},
		{fmt.Sprintf("%d", len(summary.RecommendedCrops)), "Crops"},
		{status, "Recommendations"},
		{upperFirst(summary.UncertaintyLevel), "Uncertainty"},
	}

	columnWidth := float64(dc.Width()) / float64(len(metrics))
	for i, metric := range metrics {
		center := columnWidth*float64(i) + columnWidth/2

		dc.SetHexColor("#000000")
		if err := setFontFace(dc, 34); err != nil {
			return err
		}
		drawStringCentered(dc, metric.value, center, 75)

		if err := setFontFace(dc, 15); err != nil {
			return err
		}
		drawStringCentered(dc, metric.label, center, 125)
	}
	return nil
}

func drawCropList(dc *gg.Context, crops []string) error {
	dc.SetHexColor("#000000")
	if err := setFontFace(dc, 20); err != nil {
		return err
	}
	text := "Recommended: none"
	if len(crops) > 0 {
		text = "Recommended: " + strings.Join(crops, ", ")
	}
	drawStringLeft(dc, text, 10, 170)
	return nil
}

func drawPlanEconomics(dc *gg.Context, summary advisor.PlanSummary) error {
	metrics := []struct {
		value string
		label string
		color string
	}{
		{fmt.Sprintf("%.0f kg", summary.TotalYield), "Total Yield", "#000000"},
		{fmt.Sprintf("$%.0f", summary.TotalCost), "Total Cost", "#000000"},
		{fmt.Sprintf("$%.0f", summary.TotalProfit), "Total Profit", profitColor(summary.TotalProfit)},
	}

	columnWidth := float64(dc.Width()) / float64(len(metrics))
	for i, metric := range metrics {
		center := columnWidth*float64(i) + columnWidth/2

		dc.SetHexColor(metric.color)
		if err := setFontFace(dc, 30); err != nil {
			return err
		}
		drawStringCentered(dc, metric.value, center, 215)

		dc.SetHexColor("#000000")
		if err := setFontFace(dc, 15); err != nil {
			return err
		}
		drawStringCentered(dc, metric.label, center, 260)
	}
	return nil
}

func drawRiskCounts(dc *gg.Context, risks advisor.RiskAssessment) error {
	if err := setFontFace(dc, 17.5); err != nil {
		return err
	}

	counts := []struct {
		label string
		count int
		color string
	}{
		{"High", len(risks.HighRiskFactors), "#dc3545"},
		{"Medium", len(risks.MediumRiskFactors), "#ffc107"},
		{"Low", len(risks.LowRiskFactors), "#28a745"},
	}

	columnWidth := float64(dc.Width()) / float64(len(counts))
	for i, risk := range counts {
		center := columnWidth*float64(i) + columnWidth/2

		dc.SetHexColor(risk.color)
		dc.DrawCircle(center-60, 330, 7)
		dc.Fill()

		dc.SetHexColor("#000000")
		drawStringLeft(dc, fmt.Sprintf("%s risks: %d", risk.label, risk.count), center-45, 318)
	}
	return nil
}

// drawTopAction draws the first actionable recommendation, shrinking the font
// until the text fits the card width.
func drawTopAction(dc *gg.Context, actions []string) error {
	if len(actions) == 0 {
		return nil
	}
	action := actions[0]

	dc.SetHexColor("#000000")
	actionFontSize := 22
	for actionFontSize > 10 {
		if err := setFontFace(dc, float64(actionFontSize)); err != nil {
			return err
		}
		w, _ := dc.MeasureString(action)
		if w < float64(dc.Width())-20 {
			break
		}
		actionFontSize -= 1
	}
	drawStringCentered(dc, action, float64(dc.Width())/2, 410)
	return nil
}

func profitColor(profit float64) string {
	if profit > 0 {
		return "#28a745"
	}
	return "#dc3545"
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func drawStringCentered(dc *gg.Context, text string, x, y float64) {
	w, h := dc.MeasureString(text)
	dc.DrawString(text, x-w/2, y+h)
}
func drawStringLeft(dc *gg.Context, text string, x, y float64) {
	_, h := dc.MeasureString(text)
	dc.DrawString(text, x, y+h)
}
