// Package exporter writes the cleaned panel and its report tables.
//
// CSVWriter: core CSV writing with optional header, append mode and a UTF-8
// BOM for Excel.
//
// PanelSink: the streaming destination of a clean run. It removes any prior
// output when created and appends each batch of finalized rows, writing the
// header once.
//
// ReportExporter: descriptive-statistics tables (CSV and XLSX) and the
// missing-value table.
//
// Example usage:
//
//	sink, err := exporter.NewPanelSink("cleaned.csv", exporter.NewOutputLayout("PERMNO", "SHROUT", passthrough), logger)
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	summary, err := pipeline.Run(ctx, source, sink)
package exporter
