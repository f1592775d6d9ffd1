// Package export writes lead reports as spreadsheet files.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/aws_s3"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/xuri/excelize/v2"
)

var ErrEmptyReport = errors.New("report is empty, nothing to export")

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	dateToken  = "{date}"
	dateLayout = "20060102"
	sheetName  = "Leads"
	notFound   = "Non trouvé"
)

var (
	huntColumns = []string{"Date_Discovery", "Source_Query", "URL", "Title", "Emails", "Phones",
		"Relevance_Score", "Keywords_Found", "Status"}
	harvestColumns = []string{"Region", "URL", "Emails", "Page_Title", "Status"}
)

type Exporter struct {
	dir            string
	format         string
	harvestPattern string
	huntPattern    string
	bucket         aws_s3.BucketClient
}

// NewExporter uploads each written file when bucket is not nil.
func NewExporter(cfg *config.ExportConfig, bucket aws_s3.BucketClient) *Exporter {
	format := strings.ToLower(cfg.Format)
	if format != FormatCSV {
		format = FormatXLSX
	}
	return &Exporter{
		dir:            cfg.Dir,
		format:         format,
		harvestPattern: cfg.HarvestPattern,
		huntPattern:    cfg.HuntPattern,
		bucket:         bucket,
	}
}

// Export writes the report and returns the file path. A file of the same name is
// overwritten. An empty report writes nothing and returns ErrEmptyReport.
func (e *Exporter) Export(ctx context.Context, report *model.LeadReport) (string, error) {
	if report.Empty() {
		return "", ErrEmptyReport
	}
	header, rows := table(report)
	path := filepath.Join(e.dir, e.FileName(report))

	var err error
	if e.format == FormatCSV {
		err = writeCSV(path, header, rows)
	} else {
		err = writeXLSX(path, header, rows)
	}
	if err != nil {
		return "", err
	}
	slog.Info("report exported.", slog.String("path", path), slog.Int("rows", len(rows)))

	if e.bucket != nil {
		key, err := e.bucket.WriteReport(ctx, report.Kind, path)
		if err != nil {
			slog.Error("report upload failed. The local file is kept.", slog.String("err", err.Error()))
		} else {
			slog.Info("report uploaded.", slog.String("key", key))
		}
	}

	return path, nil
}

// FileName expands {date} in the pattern of the report kind with the report date.
func (e *Exporter) FileName(report *model.LeadReport) string {
	pattern := e.huntPattern
	if report.Kind == model.HarvestReport {
		pattern = e.harvestPattern
	}
	name := strings.ReplaceAll(pattern, dateToken, report.GeneratedAt.Format(dateLayout))
	return name + "." + e.format
}

func table(report *model.LeadReport) ([]string, [][]string) {
	rows := make([][]string, 0, len(report.Signals))
	if report.Kind == model.HarvestReport {
		for _, s := range report.Signals {
			emails := strings.Join(s.Emails, ", ")
			if emails == "" {
				emails = notFound
			}
			rows = append(rows, []string{s.Region, s.URL, emails, s.Title, s.StatusText()})
		}
		return harvestColumns, rows
	}
	for _, s := range report.Signals {
		rows = append(rows, []string{
			s.VisitedAt.Format("2006-01-02"),
			s.Source,
			s.URL,
			s.Title,
			strings.Join(s.Emails, ", "),
			strings.Join(s.Phones, ", "),
			strconv.Itoa(s.Relevance),
			strings.Join(s.Keywords, ", "),
			s.StatusText(),
		})
	}
	return huntColumns, rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	return nil
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook.", slog.String("err", err.Error()))
		}
	}()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("prepare workbook: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}
