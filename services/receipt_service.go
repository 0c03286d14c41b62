package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/azmhq/mentor_platform/configs"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #222; }
h1 { font-size: 22px; border-bottom: 2px solid #222; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
td { padding: 8px 0; border-bottom: 1px solid #ddd; }
td:last-child { text-align: right; }
.total { font-weight: bold; font-size: 18px; }
.footer { margin-top: 48px; font-size: 12px; color: #888; }
</style></head>
<body>
<h1>Session Receipt</h1>
<p>Receipt for mentoring session <b>{{.MeetingID}}</b>, issued {{.IssuedAt}}.</p>
<table>
<tr><td>Student</td><td>{{.StudentName}}</td></tr>
<tr><td>Mentor</td><td>{{.MentorName}}</td></tr>
<tr><td>Session</td><td>{{.Title}}</td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Duration</td><td>{{.Duration}} minutes</td></tr>
<tr><td>Hourly rate</td><td>{{.HourlyRate}} {{.Currency}}</td></tr>
<tr class="total"><td>Total</td><td>{{.Total}} {{.Currency}}</td></tr>
</table>
<p class="footer">Generated automatically after session completion.</p>
</body>
</html>`))

// GenerateSessionReceipt renders a PDF receipt for a completed booking and
// stores it in Cloudinary. Best-effort: every failure is logged and dropped.
func GenerateSessionReceipt(booking models.Booking) {
	if booking.Status != models.BookingCompleted {
		return
	}

	var existing models.Receipt
	if err := database.DB.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
		return
	}

	htmlData, err := renderReceiptHTML(booking)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for booking %s: %v", booking.ID, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for booking %s: %v", booking.ID, err)
		return
	}

	uploadURL, err := uploadReceipt(pdfBytes, booking.ID)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for booking %s: %v", booking.ID, err)
		return
	}

	receipt := models.Receipt{
		BookingID:  booking.ID,
		StudentID:  booking.StudentID,
		MentorID:   booking.MentorID,
		Amount:     booking.TotalAmount,
		Currency:   booking.Currency,
		ReceiptURL: uploadURL,
		IssuedAt:   time.Now(),
	}
	if err := database.DB.Create(&receipt).Error; err != nil {
		log.Printf("🔥 Failed to save receipt record for booking %s: %v", booking.ID, err)
		return
	}

	log.Printf("✅ Generated receipt for booking %s", booking.ID)
}

func renderReceiptHTML(booking models.Booking) (string, error) {
	meetingID := ""
	if booking.MeetingID != nil {
		meetingID = *booking.MeetingID
	}

	data := struct {
		MeetingID   string
		IssuedAt    string
		StudentName string
		MentorName  string
		Title       string
		Date        string
		Duration    int
		HourlyRate  string
		Total       string
		Currency    string
	}{
		MeetingID:   meetingID,
		IssuedAt:    time.Now().Format("January 2, 2006"),
		StudentName: booking.Student.FullName(),
		MentorName:  booking.Mentor.FullName(),
		Title:       booking.Title,
		Date:        booking.ScheduledDate.Format("January 2, 2006 15:04 MST"),
		Duration:    booking.Duration,
		HourlyRate:  fmt.Sprintf("%.2f", booking.HourlyRate),
		Total:       fmt.Sprintf("%.2f", booking.TotalAmount),
		Currency:    booking.Currency,
	}

	var rendered bytes.Buffer
	if err := receiptTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceipt(fileBytes []byte, bookingID uuid.UUID) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s", bookingID),
		Folder:       "mentor_platform_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
