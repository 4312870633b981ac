package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

func TestFormatTicketAlertEscapesUserContent(t *testing.T) {
	record := testRecord()
	record.ReporterName = `<script>alert("x")</script>`
	record.ComplaintText = "1 < 2 & 3 > 2"

	message := FormatTicketAlert(record)

	assert.NotContains(t, message, "<script>")
	assert.Contains(t, message, "&lt;script&gt;")
	assert.Contains(t, message, "1 &lt; 2 &amp; 3 &gt; 2")
}

func TestFormatTicketAlertRendersEvidenceLinkOnlyForURLs(t *testing.T) {
	record := testRecord()
	record.EvidenceRef = "https://example.com/file.jpg"
	message := FormatTicketAlert(record)
	assert.Contains(t, message, `<a href="https://example.com/file.jpg">`)

	record.EvidenceRef = "<b>not a url</b>"
	message = FormatTicketAlert(record)
	assert.NotContains(t, message, "<a href")
	assert.Contains(t, message, "&lt;b&gt;not a url&lt;/b&gt;")

	record.EvidenceRef = domain.NoEvidence
	message = FormatTicketAlert(record)
	assert.Contains(t, message, domain.NoEvidence)
	assert.NotContains(t, message, "<a href")
}

func TestFormatTicketAlertContactFooter(t *testing.T) {
	record := testRecord()
	message := FormatTicketAlert(record)
	assert.Contains(t, message, "Message <b>@budi</b> directly")

	record.ContactMethod = domain.ContactMethodUserID
	record.ContactHandle = "ID: 12345"
	message = FormatTicketAlert(record)
	assert.Contains(t, message, "No public handle")
}
