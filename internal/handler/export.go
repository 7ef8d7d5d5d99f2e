package handler

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/flicky/green-store/internal/model"
)

var catalogHeaders = []string{
	"ID", "Name", "Description", "Price", "Stock", "Category",
	"EcoFriendly", "CarbonFootprint", "PlasticContent", "Recyclable", "LocallySourced",
	"SustainabilityScore", "EcoTags", "CreatedAt", "UpdatedAt",
}

func catalogWorkbook(products []model.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range catalogHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.IsEcoFriendly)
		row.AddCell().SetValue(p.CarbonFootprint)
		row.AddCell().SetValue(p.PlasticContent)
		row.AddCell().SetValue(p.Recyclable)
		row.AddCell().SetValue(p.LocallySourced)
		row.AddCell().SetValue(p.SustainabilityScore)
		row.AddCell().SetValue(strings.Join(p.EcoTags, ","))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
