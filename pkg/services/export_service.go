package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"price-dashboard-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	productsSheet       = "Products"
	demandCurveSheet    = "Demand Curve"
	recommendationSheet = "Recommendation"
)

var productHeader = []string{"ID", "Name", "Category", "Current Price (AED)", "Cost (AED)", "Unit"}

// ExportService 商品一覧や最適化結果をExcel/CSVに書き出します。
type ExportService struct{}

// NewExportService 新しいエクスポートサービスを作成
func NewExportService() *ExportService {
	return &ExportService{}
}

// ProductsToXLSX 商品一覧をxlsxに変換
func (s *ExportService) ProductsToXLSX(products []models.Product) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), productsSheet); err != nil {
		return nil, fmt.Errorf("シート名の設定に失敗: %w", err)
	}

	if err := setRow(f, productsSheet, 1, toCells(productHeader)); err != nil {
		return nil, err
	}
	for i, p := range products {
		var cost interface{}
		if p.Cost != nil {
			cost = *p.Cost
		}
		row := []interface{}{p.ID, p.Name, p.Category, p.CurrentPrice, cost, p.Unit}
		if err := setRow(f, productsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(productsSheet, "B", "B", 45); err != nil {
		return nil, fmt.Errorf("列幅の設定に失敗: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("Excelファイルの書き出しに失敗: %w", err)
	}
	return buf, nil
}

// ProductsToCSV 商品一覧をCSVで書き出す
func (s *ExportService) ProductsToCSV(products []models.Product, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗: %w", err)
	}
	for _, p := range products {
		cost := ""
		if p.Cost != nil {
			cost = strconv.FormatFloat(*p.Cost, 'f', 2, 64)
		}
		record := []string{p.ID, p.Name, p.Category, strconv.FormatFloat(p.CurrentPrice, 'f', 2, 64), cost, p.Unit}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DemandCurveToXLSX 最適化結果の需要曲線と推奨価格をxlsxに変換
func (s *ExportService) DemandCurveToXLSX(resp models.OptimizationResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), demandCurveSheet); err != nil {
		return nil, fmt.Errorf("シート名の設定に失敗: %w", err)
	}
	if err := setRow(f, demandCurveSheet, 1, toCells([]string{"Price (AED)", "Predicted Demand", "Revenue (AED)"})); err != nil {
		return nil, err
	}
	for i, point := range resp.DemandCurve {
		if err := setRow(f, demandCurveSheet, i+2, []interface{}{point.Price, point.PredictedDemand, point.Revenue}); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(recommendationSheet); err != nil {
		return nil, fmt.Errorf("シートの作成に失敗: %w", err)
	}
	rec := resp.Recommendation
	rows := [][]interface{}{
		{"Product", resp.ProductName},
		{"Category", resp.Category},
		{"Emirate", resp.Emirate},
		{"Store Type", resp.StoreType},
		{"Current Price (AED)", rec.CurrentPrice},
		{"Recommended Price (AED)", rec.RecommendedPrice},
		{"Price Change (%)", rec.PriceChangePercentage},
		{"Expected Demand", rec.ExpectedDemand},
		{"Expected Revenue (AED)", rec.ExpectedRevenue},
		{"Confidence", rec.ConfidenceScore},
		{"Elasticity", resp.Elasticity.ElasticityCoefficient},
		{"Elasticity Category", resp.Elasticity.ElasticityCategory},
		{"Reasoning", rec.Reasoning},
		{"Generated At", resp.Timestamp},
	}
	for i, row := range rows {
		if err := setRow(f, recommendationSheet, i+1, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("Excelファイルの書き出しに失敗: %w", err)
	}
	return buf, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%sの%d行目の書き込みに失敗: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
