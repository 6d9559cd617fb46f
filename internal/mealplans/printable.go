package mealplans

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/calendar"
)

const (
	pdfDateColWidth = 38.0
	pdfRowHeight    = 18.0
	pdfHeaderHeight = 8.0
)

// Printable renders the plan as a landscape A4 PDF with one page per week.
// Recipe names are resolved through the configured RecipeNamer; ids are
// printed when no namer is set or a recipe has been deleted.
func (s *Service) Printable(ctx context.Context, id string) ([]byte, error) {
	plan, err := loadForFamily(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if s.recipes != nil {
		resolved, err := s.recipes.RecipeNames(ctx, plan.FamilyID, plan.DistinctRecipeIDs())
		if err != nil {
			log.Warn().Err(err).Str("plan_id", plan.ID).Msg("printable: recipe names unavailable, using ids")
		} else {
			names = resolved
		}
	}

	slotNames := map[string]string{}
	if s.slots != nil {
		if configured, err := s.slots.ListSlots(ctx, plan.FamilyID); err == nil {
			for _, slot := range configured {
				slotNames[slot.ID] = slot.Name
			}
		}
	}

	return renderPlanPDF(plan, names, slotNames)
}

func renderPlanPDF(plan *MealPlan, recipeNames, slotNames map[string]string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	slotCount := len(plan.MealSlots)
	if slotCount == 0 {
		slotCount = 1
	}
	slotColWidth := (pageWidth - left - right - pdfDateColWidth) / float64(slotCount)

	for week := 0; week < calendar.WeeksPerPlan; week++ {
		dates, err := plan.WeekDates(week)
		if err != nil {
			return nil, err
		}

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, tr(plan.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("Week %d: %s", week+1,
			calendar.FormatRange(dates[0], dates[len(dates)-1]))), "", 1, "L", false, 0, "")
		pdf.Ln(3)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(pdfDateColWidth, pdfHeaderHeight, "Day", "1", 0, "C", true, 0, "")
		for i, slotID := range plan.MealSlots {
			label := slotID
			if n, ok := slotNames[slotID]; ok && n != "" {
				label = n
			}
			ln := 0
			if i == len(plan.MealSlots)-1 {
				ln = 1
			}
			pdf.CellFormat(slotColWidth, pdfHeaderHeight, tr(label), "1", ln, "C", true, 0, "")
		}
		if len(plan.MealSlots) == 0 {
			pdf.Ln(pdfHeaderHeight)
		}

		pdf.SetFont("Helvetica", "", 9)
		for _, d := range dates {
			pdf.CellFormat(pdfDateColWidth, pdfRowHeight, d.Format("Mon Jan 2"), "1", 0, "L", false, 0, "")
			for i, slotID := range plan.MealSlots {
				text := ""
				if recipeID, ok := plan.RecipeForSlot(d, slotID); ok {
					text = recipeID
					if n, ok := recipeNames[recipeID]; ok && n != "" {
						text = n
					}
				}
				ln := 0
				if i == len(plan.MealSlots)-1 {
					ln = 1
				}
				pdf.CellFormat(slotColWidth, pdfRowHeight, tr(truncateCell(pdf, text, slotColWidth-2)), "1", ln, "C", false, 0, "")
			}
			if len(plan.MealSlots) == 0 {
				pdf.Ln(pdfRowHeight)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render meal plan pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncateCell shortens text with an ellipsis until it fits width.
func truncateCell(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
