package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/slingventas/sales-tracker-backend/internal/record"
)

func exportRecords() []record.Record {
	return []record.Record{
		{ID: 12, Date: "5/1/2025", InCharge: "ana", Address: "San Martín 100, Córdoba", Company: `Kiosco "El Sol"`,
			Industry: "COMIDA", Sold: record.OutcomeSold, ContactInfo: "351 444", Contacted: record.ContactedYes},
		{ID: 11, Date: "4/1/2025", InCharge: "luis", Address: "Belgrano 5", Company: "Libreria Norte",
			Industry: "LIBRERIA", Sold: record.OutcomePending, ContactInfo: "@norte", Contacted: record.ContactedNo},
	}
}

func TestConvertToCSV(t *testing.T) {
	records := exportRecords()
	out, err := ConvertToCSV(records)
	if err != nil {
		t.Fatalf("ConvertToCSV: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != len(records)+1 {
		t.Fatalf("expected %d lines, got %d:\n%s", len(records)+1, len(lines), out)
	}
	if lines[0] != "Fecha,Encargado,Dirección,Empresa,Rubro,Vendido,Contacto,Contactado" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"San Martín 100, Córdoba"`) {
		t.Fatalf("comma field not quoted: %q", lines[1])
	}

	parsed, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if parsed[1][3] != `Kiosco "El Sol"` || parsed[2][4] != "LIBRERIA" {
		t.Fatalf("fields did not survive: %v", parsed)
	}
}

func TestConvertToCSVMultilineField(t *testing.T) {
	records := exportRecords()
	records[0].ContactInfo = "351 444\nfijo 422 000"
	out, err := ConvertToCSV(records)
	if err != nil {
		t.Fatalf("ConvertToCSV: %v", err)
	}

	if lines := strings.Count(out, "\n") + 1; lines != len(records)+2 {
		t.Fatalf("expected %d physical lines, got %d:\n%s", len(records)+2, lines, out)
	}
	if !strings.Contains(out, "\"351 444\nfijo 422 000\"") {
		t.Fatalf("multiline field not quoted:\n%s", out)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("expected %d rows, got %d", len(records)+1, len(rows))
	}
	if rows[1][6] != "351 444\nfijo 422 000" {
		t.Fatalf("contact = %q", rows[1][6])
	}
}

func TestConvertToCSVEmpty(t *testing.T) {
	out, err := ConvertToCSV(nil)
	if err != nil {
		t.Fatalf("ConvertToCSV: %v", err)
	}
	if strings.Count(out, "\n") != 0 || !strings.HasPrefix(out, "Fecha,") {
		t.Fatalf("expected header only, got %q", out)
	}
}

func TestWriteCSVStartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exportRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF, 'F'}) {
		t.Fatalf("missing BOM: % x", buf.Bytes()[:4])
	}
}

func TestConvertToJSON(t *testing.T) {
	body, err := ConvertToJSON(exportRecords())
	if err != nil {
		t.Fatalf("ConvertToJSON: %v", err)
	}
	if !strings.Contains(string(body), "\n  {\n    \"id\": \"12\"") {
		t.Fatalf("expected two-space indentation and string ids:\n%s", body)
	}
	var back []map[string]any
	if err := json.Unmarshal(body, &back); err != nil || len(back) != 2 {
		t.Fatalf("round trip: %v %d", err, len(back))
	}
	if back[0]["cycleId"] != nil {
		t.Fatalf("open record should have null cycleId, got %v", back[0]["cycleId"])
	}

	empty, err := ConvertToJSON(nil)
	if err != nil || string(empty) != "[]" {
		t.Fatalf("empty export: %q %v", empty, err)
	}
}

func TestFileNames(t *testing.T) {
	now := time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	if got := CSVFileName("", now); got != "Reporte_Ventas_Actual_2025-02-03.csv" {
		t.Errorf("open cycle csv name %q", got)
	}
	if got := CSVFileName("Ciclo  enero 2025", now); got != "Reporte_Ventas_Ciclo_enero_2025_2025-02-03.csv" {
		t.Errorf("archived csv name %q", got)
	}
	if got := JSONFileName("Enero"); got != "Backup_Sling_Enero.json" {
		t.Errorf("json name %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	records := exportRecords()
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, records, ComputeStats(records, nil)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(recordsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(records)+1 || rows[1][3] != `Kiosco "El Sol"` {
		t.Fatalf("unexpected records sheet %v", rows)
	}
	statRows, err := f.GetRows(statsSheet)
	if err != nil {
		t.Fatalf("GetRows stats: %v", err)
	}
	if len(statRows) != 3 || statRows[1][0] != "ana" || statRows[1][6] != "10" {
		t.Fatalf("unexpected stats sheet %v", statRows)
	}
}
