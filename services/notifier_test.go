package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"conference-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type sentMail struct {
	to      []string
	subject string
	html    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to []string, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return m.err
}

func (m *fakeMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func notifierAbstract(status string) models.Abstract {
	return models.Abstract{
		ID:                       7,
		Title:                    "Clinic <b>referrals</b>",
		CorrespondingAuthorEmail: "amina@example.org",
		Track:                    testTrack,
		Subcategory:              testSubcategory,
		Format:                   models.FormatOral,
		Status:                   status,
	}
}

func TestNotifierSubmissionMailsAuthorAndAdmin(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	mailer := &fakeMailer{}
	n := NewNotifier(mailer, "chair@example.org", nil)

	n.AbstractSubmitted(notifierAbstract(models.StatusSubmitted))
	n.Wait()

	sent := mailer.messages()
	require.Len(t, sent, 2)
	recipients := []string{sent[0].to[0], sent[1].to[0]}
	assert.ElementsMatch(t, []string{"amina@example.org", "chair@example.org"}, recipients)
	for _, m := range sent {
		assert.NotContains(t, m.html, "<b>referrals</b>", "title must be escaped")
	}
}

func TestNotifierOnlyMailsDecisions(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer, "", nil)

	n.StatusChanged(notifierAbstract(models.StatusUnderReview), models.StatusSubmitted)
	n.StatusChanged(notifierAbstract(models.StatusAccepted), models.StatusAccepted)
	n.Wait()
	assert.Empty(t, mailer.messages())

	a := notifierAbstract(models.StatusRevisionRequired)
	a.ReviewerComments = strPtr("Tighten the methods section.")
	n.StatusChanged(a, models.StatusUnderReview)
	n.Wait()

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"amina@example.org"}, sent[0].to)
	assert.True(t, strings.HasPrefix(sent[0].subject, "Decision on your abstract"))
	assert.Contains(t, sent[0].html, "revision required")
	assert.Contains(t, sent[0].html, "Tighten the methods section.")
}

func TestNotifierSwallowsFailures(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	n := NewNotifier(mailer, "", nil)

	assert.NotPanics(t, func() {
		n.StatusChanged(notifierAbstract(models.StatusRejected), models.StatusSubmitted)
		n.Wait()
	})
	assert.Len(t, mailer.messages(), 1)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.AbstractSubmitted(notifierAbstract(models.StatusSubmitted))
		n.StatusChanged(notifierAbstract(models.StatusAccepted), models.StatusSubmitted)
		n.Wait()
	})

	unconfigured := NewNotifier(nil, "chair@example.org", nil)
	assert.NotPanics(t, func() {
		unconfigured.AbstractSubmitted(notifierAbstract(models.StatusSubmitted))
		unconfigured.Wait()
	})
}
