package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rideshare/internal/domain/models"
	"rideshare/internal/http/middleware"
	"rideshare/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/phpdave11/gofpdf"
)

// GET /api/bookings/:id/receipt
//
// Renders the booking receipt PDF. Only the booking's passenger (or a
// moderator) may fetch it.
func GetBookingReceiptPDF(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := repositories.BookingRepo{}.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondError(c, http.StatusNotFound, "booking not found", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "booking lookup failed", err)
		return
	}
	if booking.PassengerAccountID != identity.AccountID && !identity.IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}

	ride, err := repositories.RideRepo{}.GetByID(booking.RideID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ride lookup failed", err)
		return
	}

	pdfBytes, filename, err := buildReceiptPDF(booking, ride)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to build receipt PDF", err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func buildReceiptPDF(b models.Booking, r models.Ride) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt No    : RCT-%d", b.ID),
		fmt.Sprintf("Issued        : %s", time.Now().Format("2006-01-02 15:04")),
		fmt.Sprintf("Ride          : %s -> %s", r.Origin, r.Destination),
		fmt.Sprintf("Departs       : %s", r.DepartsAt),
		fmt.Sprintf("Seats         : %d", b.SeatsBooked),
		fmt.Sprintf("Price/Seat    : %s credits", r.PricePerSeat.StringFixed(2)),
		fmt.Sprintf("Status        : %s", b.Status),
	}
	if b.ConfirmedAt != nil {
		lines = append(lines, fmt.Sprintf("Confirmed At  : %s", b.ConfirmedAt.Format("2006-01-02 15:04")))
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Credits are an internal balance of the platform and have no cash value.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%d.pdf", b.ID)
	return buf.Bytes(), filename, nil
}
