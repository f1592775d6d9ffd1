package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContacts_Dedup(t *testing.T) {
	emails, phones := Contacts("contact us at a@b.com or a@b.com, call +1 2345678901", 0)
	assert.Equal(t, []string{"a@b.com"}, emails)
	assert.Equal(t, []string{"+1 2345678901"}, phones)
}

func TestContacts_Cap(t *testing.T) {
	text := "x@academy.es y@academy.es z@academy.es w@academy.es +34 611111111 +34 622222222 +34 633333333"

	emails, phones := Contacts(text, 2)
	assert.Equal(t, []string{"x@academy.es", "y@academy.es"}, emails)
	assert.Equal(t, []string{"+34 611111111", "+34 622222222"}, phones)

	assert.Len(t, Emails(text, 3), 3)
}

func TestContacts_NoMatches(t *testing.T) {
	emails, phones := Contacts("no contact details here, call 911", 3)
	assert.Empty(t, emails)
	assert.Empty(t, phones)
}

func TestEmails_Patterns(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"write to first.last+trials@club-academy.co.uk today", []string{"first.last+trials@club-academy.co.uk"}},
		{"info@academy", nil},
		{"INFO@ACADEMY.TR", []string{"INFO@ACADEMY.TR"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Emails(tc.text, 0), tc.text)
	}
}

func TestPhones_OptionalPlus(t *testing.T) {
	assert.Equal(t, []string{"90 5321234567"}, Phones("tel 90 5321234567", 0))
}

func TestRelevance_KeywordListOrder(t *testing.T) {
	r := Ranker{
		Keywords:         []string{"visa", "boarding", "accommodation", "price", "fees", "registration", "scholarship"},
		PointsPerKeyword: 10,
	}

	score, kws := r.Relevance("This academy offers visa support and scholarship options")
	assert.Equal(t, 20, score)
	assert.Equal(t, []string{"visa", "scholarship"}, kws)

	score, kws = r.Relevance("Scholarship! VISA visa visa. Boarding.")
	assert.Equal(t, 30, score)
	assert.Equal(t, []string{"visa", "boarding", "scholarship"}, kws)

	score, kws = r.Relevance("nothing relevant")
	assert.Zero(t, score)
	assert.Empty(t, kws)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("https://academy.com/forms/application.pdf"))
	assert.True(t, IsPDF("https://academy.com/forms/APPLICATION.PDF?v=2"))
	assert.False(t, IsPDF("https://academy.com/pdf-forms/"))
	assert.False(t, IsPDF("https://academy.com/trials"))
}

func TestParsePage(t *testing.T) {
	page := ParsePage(`<!DOCTYPE html><html><head>
  <title>  Antalya Trial Camp 2026 </title>
  <style>.x{color:red}</style>
</head><body>
  <script>var contact = "hidden@tracker.com";</script>
  <p>Email</p><p>camp@antalya-trials.com</p><div>Fees and visa support</div>
</body></html>`)

	assert.Equal(t, "Antalya Trial Camp 2026", page.Title)
	assert.Contains(t, page.Text, "camp@antalya-trials.com Fees and visa support")
	assert.NotContains(t, page.Text, "hidden@tracker.com")
	assert.NotContains(t, page.Text, "color:red")
	assert.Equal(t, []string{"camp@antalya-trials.com"}, Emails(page.Text, 3))
}

func TestParsePage_NoTitle(t *testing.T) {
	page := ParsePage("<p>hello</p>")
	assert.Empty(t, page.Title)
	assert.Equal(t, "hello", page.Text)
}
