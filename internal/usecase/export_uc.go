package usecase

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/artisanswear/artisans/internal/domain"
)

// ExportUC produces the admin catalog export.
type ExportUC struct {
	Catalog *CatalogUC
}

var exportHeader = []string{"ID", "Name", "Price", "Category", "Description", "Images"}

// CatalogXLSX renders the full product list as a one-sheet workbook. The
// list is refreshed first so the export reflects the store, not the cache.
func (uc *ExportUC) CatalogXLSX(ctx context.Context) (*excelize.File, error) {
	if err := uc.Catalog.Refresh(ctx); err != nil {
		return nil, err
	}
	list := uc.Catalog.List(domain.CategoryAll, "")

	f := excelize.NewFile()
	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for row, p := range list {
		values := []any{p.ID, p.Name, p.Price, p.Category, p.Description, len(p.Images)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}
	return f, nil
}
