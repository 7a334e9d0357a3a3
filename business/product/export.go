package product

import (
	"context"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"io"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Description", "Category", "Unit", "Price",
	"DiscountPercentage", "PromotionalPrice", "Stock", "Available",
	"Featured", "CreatedAt", "UpdatedAt",
}

// Export writes every product of a hortifruit as one xlsx sheet.
func (s *productService) Export(ctx context.Context, principal domain.Principal, hortifruitID uuid.UUID, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when export products")
		return fmt.Errorf("context error: %w", err)
	}

	vendorID, err := vendorFor(principal, hortifruitID)
	if err != nil {
		return err
	}

	products, err := s.productRepo.FindAllByVendor(ctx, vendorID)
	if err != nil {
		logger.Error("Failed to find products", err)
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		logger.Error("failed to create sheet", err)
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()

		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}

		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(p.Unit)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(nullable(p.DiscountPercentage.Valid, p.DiscountPercentage.Decimal.StringFixed(2)))
		row.AddCell().SetValue(nullable(p.PromotionalPrice.Valid, p.PromotionalPrice.Decimal.StringFixed(2)))
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.IsAvailable)
		row.AddCell().SetValue(p.Featured)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		logger.Error("failed to write xlsx", err)
		return fmt.Errorf("failed to write xlsx: %w", err)
	}

	logger.Info("products exported", "hortifruit_id", vendorID.String(), "rows", len(products))

	return nil
}

func nullable(valid bool, value string) string {
	if !valid {
		return ""
	}
	return value
}
