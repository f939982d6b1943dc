package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pogrn/internal/api"
	"pogrn/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeRecordList(records []api.RecordResponse) error {
	for _, rec := range records {
		if err := writePlain("%s\n", formatRecordLine(rec)); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordDetail(rec api.RecordResponse) error {
	return writePlain("%s\n", strings.Join(recordDetailLines(rec), "\n"))
}

func recordDetailLines(rec api.RecordResponse) []string {
	lines := []string{
		fmt.Sprintf("po_number: %s", rec.PONumber),
		fmt.Sprintf("vendor_name: %s", rec.VendorName),
		fmt.Sprintf("received_date: %s", rec.ReceivedDate),
		fmt.Sprintf("grn_status: %s", rec.GRNStatus),
	}
	if rec.POFile != nil {
		lines = append(lines, fmt.Sprintf("po_file: %s", rec.POFile.StoragePath))
	}
	if rec.GRNFile != nil {
		lines = append(lines, fmt.Sprintf("grn_file: %s", rec.GRNFile.StoragePath))
	}
	for _, key := range sortedKeys(rec.Extra) {
		lines = append(lines, fmt.Sprintf("%s: %s", key, rec.Extra[key]))
	}
	return lines
}

func formatRecordLine(rec api.RecordResponse) string {
	marker := "○"
	if rec.GRNStatus == "Completed" {
		marker = "●"
	}
	date := rec.ReceivedDate
	if date == "" {
		date = "----------"
	}
	return fmt.Sprintf("%s %s %s - %s", marker, date, rec.PONumber, rec.VendorName)
}

func writeHistory(events []api.HistoryEventResponse) error {
	for _, ev := range events {
		line := fmt.Sprintf("%s %-12s %s", formatTime(ev.CreatedAt), ev.Type, ev.PONumber)
		if ev.Detail != "" {
			line += " " + ev.Detail
		}
		if ev.Actor != "" {
			line += " (" + ev.Actor + ")"
		}
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
