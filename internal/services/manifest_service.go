package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain/models"
	"tripcore/internal/repositories"
	"tripcore/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ManifestService menghasilkan PDF manifest keberangkatan per generated trip.
type ManifestService struct {
	TripRepo  repositories.TripRepository
	AllocRepo repositories.AllocationRepository
	DB        *sql.DB
	RequestID string
}

func (s ManifestService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ManifestService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

func (s ManifestService) allocations() repositories.AllocationRepository {
	if s.AllocRepo.DB != nil {
		return s.AllocRepo
	}
	return repositories.AllocationRepository{DB: s.db()}
}

// DepartureManifest renders the claimed-seat list of one generated trip.
func (s ManifestService) DepartureManifest(tripID int64) ([]byte, string, error) {
	summary, err := s.trips().GetSummary(tripID)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.allocations().ListManifest(tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "manifest", "generate",
		fmt.Sprintf("trip_id=%d rows=%d", tripID, len(rows)))
	return buildManifestPDF(summary, rows)
}

func buildManifestPDF(trip models.GeneratedTripSummary, rows []repositories.ManifestRow) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Manifest Keberangkatan", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MANIFEST KEBERANGKATAN")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Rute        : %s -> %s", manifestSafe(trip.RouteFrom), manifestSafe(trip.RouteTo)),
		fmt.Sprintf("Berangkat   : %s", utils.FormatDateTime(trip.ActualDeparture)),
		fmt.Sprintf("Tiba        : %s", utils.FormatDateTime(trip.ActualArrival)),
		fmt.Sprintf("Kendaraan   : %s (%s)", manifestSafe(trip.VehicleCode), manifestSafe(trip.VehicleName)),
		fmt.Sprintf("Kursi terisi: %d / %d", len(rows), trip.TotalSeats),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 8, "Kursi", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Penumpang", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "No HP", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Harga", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(20, 7, row.SeatNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, manifestSafe(row.CustomerName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, manifestSafe(row.CustomerPhone), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, string(row.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, utils.FormatRupiah(row.TotalPrice), "1", 1, "R", false, 0, "")
	}
	if len(rows) == 0 {
		pdf.CellFormat(185, 7, "Belum ada kursi terisi", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Catatan: manifest memuat kursi berstatus reserved/booked pada saat dicetak.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("MANIFEST_%d_%s.pdf", trip.ID, trip.ActualDeparture.Format("20060102_1504"))
	return buf.Bytes(), filename, nil
}

func manifestSafe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
