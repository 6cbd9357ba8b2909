package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/slingventas/sales-tracker-backend/internal/record"
)

// OpenCycleLabel names the open cycle in export file names.
const OpenCycleLabel = "Actual"

var csvHeader = []string{"Fecha", "Encargado", "Dirección", "Empresa", "Rubro", "Vendido", "Contacto", "Contactado"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileLabel turns a cycle name into the file name fragment. An empty name
// is the open cycle.
func FileLabel(cycleName string) string {
	if strings.TrimSpace(cycleName) == "" {
		return OpenCycleLabel
	}
	return whitespaceRun.ReplaceAllString(cycleName, "_")
}

// CSVFileName is Reporte_Ventas_<cycle>_<yyyy-mm-dd>.csv.
func CSVFileName(cycleName string, now time.Time) string {
	return fmt.Sprintf("Reporte_Ventas_%s_%s.csv", FileLabel(cycleName), now.Format("2006-01-02"))
}

// JSONFileName is Backup_Sling_<cycle>.json.
func JSONFileName(cycleName string) string {
	return fmt.Sprintf("Backup_Sling_%s.json", FileLabel(cycleName))
}

// XLSXFileName mirrors CSVFileName.
func XLSXFileName(cycleName string, now time.Time) string {
	return fmt.Sprintf("Reporte_Ventas_%s_%s.xlsx", FileLabel(cycleName), now.Format("2006-01-02"))
}

func csvRow(r *record.Record) []string {
	return []string{r.Date, r.InCharge, r.Address, r.Company, r.Industry, string(r.Sold), r.ContactInfo, string(r.Contacted)}
}

func writeCSVRows(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(csvRow(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ConvertToCSV renders the header and one CSV row per record. Fields holding
// commas, quotes or line breaks are quoted, so a row whose field contains a
// line break spans more than one physical line; count rows with a CSV
// reader, not by splitting on newlines.
func ConvertToCSV(records []record.Record) (string, error) {
	var buf bytes.Buffer
	if err := writeCSVRows(&buf, records); err != nil {
		return "", fmt.Errorf("render csv: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// WriteCSV writes a UTF-8 BOM followed by the CSV so spreadsheet tools
// detect the encoding.
func WriteCSV(w io.Writer, records []record.Record) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	return writeCSVRows(w, records)
}

// ConvertToJSON renders records as an indented JSON array.
func ConvertToJSON(records []record.Record) ([]byte, error) {
	if records == nil {
		records = []record.Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

const (
	recordsSheet = "Registros"
	statsSheet   = "Estadisticas"
)

var statsHeader = []string{"Encargado", "Visitas", "Contactados", "Vendidos", "Rechazados", "Pendientes", "Comision %"}

// WriteXLSX writes a workbook with the records and the per-salesperson stats.
func WriteXLSX(w io.Writer, records []record.Record, stats []SalesStat) error {
	f := excelize.NewFile()
	defer f.Close()

	// 1. Records sheet replaces the default one
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, recordsSheet, 1, toAny(csvHeader)); err != nil {
		return err
	}
	for i := range records {
		if err := setRow(f, recordsSheet, i+2, toAny(csvRow(&records[i]))); err != nil {
			return err
		}
	}

	// 2. Stats sheet
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(f, statsSheet, 1, toAny(statsHeader)); err != nil {
		return err
	}
	for i, s := range stats {
		row := []any{s.Name, s.SalesCount, s.ContactedCount, s.VendidoCount, s.RechazadoCount, s.PendienteCount, s.CommissionPercentage}
		if err := setRow(f, statsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("fill %s row %d: %w", sheet, rowNo, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
