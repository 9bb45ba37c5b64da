package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ErrNoSales is returned when a report would contain no rows
var ErrNoSales = errors.New("failed to generate report, no sales in range")

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const maxSheetNameLength = 31

var salesHeaders = []string{
	"IMEI", "Make", "Model", "Capacity", "Manager", "Customer",
	"ID Number", "Sale Date", "Selling Price", "Agent Commission", "Status",
}

// SalesRow is one sold phone in the sales report
type SalesRow struct {
	Company         string
	IMEI            string
	Make            string
	Model           string
	Capacity        string
	Manager         string
	Customer        string
	IDNumber        string
	SaleDate        time.Time
	SellingPrice    decimal.Decimal
	AgentCommission decimal.NullDecimal
	Status          string
}

// ReportService builds sales workbooks and archives them
type ReportService struct {
	phones  *PhoneService
	storage S3Interface
	now     func() time.Time
}

// NewReportService creates a report service. storage may be nil, in which
// case archiving reports as unavailable.
func NewReportService(db *gorm.DB, storage S3Interface) *ReportService {
	return &ReportService{phones: NewPhoneService(db), storage: storage, now: time.Now}
}

// Build renders the sales between from and to (both inclusive days)
func (s *ReportService) Build(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	if to.Before(from) {
		return nil, validationError("INVALID_RANGE", "'to' must not be before 'from'")
	}

	phones, err := s.phones.SoldBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	buffer, err := GenerateSalesReport(SalesRowsFromPhones(phones))
	if errors.Is(err, ErrNoSales) {
		return nil, notFoundError("NO_SALES", "No sales found in the selected range")
	}
	return buffer, err
}

// Archive builds the report, uploads it and returns its key and a download URL
func (s *ReportService) Archive(ctx context.Context, from, to time.Time) (string, string, error) {
	if s.storage == nil {
		return "", "", unavailableError("REPORT_STORAGE_UNAVAILABLE", "Report storage is not configured")
	}

	buffer, err := s.Build(ctx, from, to)
	if err != nil {
		return "", "", err
	}

	key := fmt.Sprintf("reports/sales_%s_%s_%d.xlsx",
		from.Format("20060102"), to.Format("20060102"), s.now().Unix())
	if err := s.storage.UploadFile(ctx, key, buffer, XLSXContentType); err != nil {
		return "", "", err
	}

	url, err := s.storage.GetPresignedURL(ctx, key)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

type reportGenerator struct {
	file *excelize.File
	used map[string]bool
}

// SalesRowsFromPhones flattens loaded phones into report rows
func SalesRowsFromPhones(phones []models.Phone) []SalesRow {
	rows := make([]SalesRow, 0, len(phones))
	for _, p := range phones {
		row := SalesRow{
			IMEI:            p.IMEI,
			Make:            p.Model.Make,
			Model:           p.Model.Model,
			Capacity:        p.Capacity,
			Manager:         strings.TrimSpace(p.Manager.FirstName + " " + p.Manager.LastName),
			SellingPrice:    p.SellingPrice,
			AgentCommission: p.AgentCommission,
			Status:          p.Status,
		}
		if p.Company != nil {
			row.Company = *p.Company
		}
		if p.SaleDate != nil {
			row.SaleDate = *p.SaleDate
		}
		if p.Customer != nil {
			row.Customer = strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
			row.IDNumber = p.Customer.IDNumber
		}
		rows = append(rows, row)
	}
	return rows
}

// GenerateSalesReport builds a workbook with one sheet per company, sorted by
// company name. Rows keep their input order within a sheet.
func GenerateSalesReport(rows []SalesRow) (*bytes.Buffer, error) {
	if len(rows) == 0 {
		return nil, ErrNoSales
	}

	byCompany := make(map[string][]SalesRow)
	var companies []string
	for _, row := range rows {
		if _, ok := byCompany[row.Company]; !ok {
			companies = append(companies, row.Company)
		}
		byCompany[row.Company] = append(byCompany[row.Company], row)
	}
	sort.Strings(companies)

	gen := &reportGenerator{file: excelize.NewFile(), used: make(map[string]bool)}
	defer gen.file.Close()

	headerStyle, err := gen.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, company := range companies {
		sheet := gen.sheetName(company)
		// the default sheet is renamed rather than deleted so a company
		// called "Sheet1" cannot collide with it
		if i == 0 {
			if err := gen.file.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("failed to rename default sheet: %w", err)
			}
		} else if _, err := gen.file.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet '%s': %w", sheet, err)
		}

		if err := gen.setupSheet(sheet, i, headerStyle, len(byCompany[company])); err != nil {
			return nil, fmt.Errorf("failed to setup sheet '%s': %w", sheet, err)
		}
		for j, row := range byCompany[company] {
			if err := gen.addRow(sheet, j+2, row); err != nil {
				return nil, fmt.Errorf("failed to add row %d: %w", j+2, err)
			}
		}
	}

	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

func (g *reportGenerator) setupSheet(sheet string, index, headerStyle, rowCount int) error {
	if err := g.file.SetRowHeight(sheet, 1, 20); err != nil {
		return fmt.Errorf("failed to set header height: %w", err)
	}
	if err := g.file.SetSheetRow(sheet, "A1", &salesHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(salesHeaders))
	if err := g.file.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	widths := []float64{20, 14, 18, 10, 24, 24, 14, 12, 14, 18, 12}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := g.file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return g.file.AddTable(sheet, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, rowCount+1),
		Name:      fmt.Sprintf("sales_%d", index+1),
		StyleName: "TableStyleMedium9",
	})
}

func (g *reportGenerator) addRow(sheet string, rowNum int, row SalesRow) error {
	saleDate := ""
	if !row.SaleDate.IsZero() {
		saleDate = row.SaleDate.Format("2006-01-02")
	}
	var commission interface{} = ""
	if row.AgentCommission.Valid {
		commission = row.AgentCommission.Decimal.InexactFloat64()
	}

	data := []interface{}{
		row.IMEI,
		row.Make,
		row.Model,
		row.Capacity,
		row.Manager,
		row.Customer,
		row.IDNumber,
		saleDate,
		row.SellingPrice.InexactFloat64(),
		commission,
		row.Status,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	return g.file.SetSheetRow(sheet, cell, &data)
}

// sheetName turns a company name into a unique, legal sheet name
func (g *reportGenerator) sheetName(company string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(company))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Unknown"
	}

	base := truncateSheetName(name, maxSheetNameLength)
	candidate := base
	for n := 2; g.used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateSheetName(name, maxSheetNameLength-len(suffix)) + suffix
	}
	g.used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateSheetName(name string, limit int) string {
	if utf8.RuneCountInString(name) > limit {
		return string([]rune(name)[:limit])
	}
	return name
}
