package services

import (
	"fmt"
	"strings"
	"sync"

	"conference-api/models"

	"go.uber.org/zap"
)

// Mailer is the outgoing mail capability. config.Mailer implements it.
type Mailer interface {
	Send(to []string, subject, html string) error
}

// Notifier sends workflow mail in the background. Delivery failures are
// logged and never reach the caller.
type Notifier struct {
	mailer     Mailer
	adminEmail string
	log        *zap.Logger
	wg         sync.WaitGroup
}

// NewNotifier returns a notifier; a nil mailer turns every send into a no-op.
func NewNotifier(mailer Mailer, adminEmail string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{mailer: mailer, adminEmail: adminEmail, log: log}
}

// Wait blocks until every queued message has been attempted.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

// AbstractSubmitted confirms receipt to the corresponding author and tells the admin inbox.
func (n *Notifier) AbstractSubmitted(a models.Abstract) {
	subject := fmt.Sprintf("Abstract received: %s", a.Title)
	body := buildEmailTemplate(subject,
		[]string{
			"Thank you for your submission. Your abstract has been received and is now in the review queue.",
			"You will be notified by email when a decision has been made.",
		},
		abstractMeta(a),
		"Conference Organizing Committee",
	)
	n.send([]string{a.CorrespondingAuthorEmail}, subject, body, a.ID)

	if n != nil && n.adminEmail != "" {
		adminSubject := fmt.Sprintf("[Admin] New abstract #%d: %s", a.ID, a.Title)
		n.send([]string{n.adminEmail}, adminSubject, buildEmailTemplate(adminSubject, []string{"A new abstract was submitted."}, abstractMeta(a), ""), a.ID)
	}
}

// StatusChanged tells the corresponding author about an admin decision.
func (n *Notifier) StatusChanged(a models.Abstract, oldStatus string) {
	if !models.IsDecisionStatus(a.Status) || a.Status == oldStatus {
		return
	}
	subject := fmt.Sprintf("Decision on your abstract: %s", a.Title)
	paragraphs := []string{
		fmt.Sprintf("The status of your abstract is now <strong>%s</strong>.", humanStatus(a.Status)),
	}
	if a.ReviewerComments != nil && strings.TrimSpace(*a.ReviewerComments) != "" {
		paragraphs = append(paragraphs, "Reviewer comments:\n"+*a.ReviewerComments)
	}
	n.send([]string{a.CorrespondingAuthorEmail}, subject, buildEmailTemplate(subject, paragraphs, abstractMeta(a), "Conference Organizing Committee"), a.ID)
}

func (n *Notifier) send(to []string, subject, html string, abstractID uint) {
	if n == nil || n.mailer == nil || len(to) == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.mailer.Send(to, subject, html); err != nil {
			n.log.Warn("notification email failed",
				zap.Uint("abstract_id", abstractID),
				zap.Strings("to", to),
				zap.Error(err))
			return
		}
		n.log.Debug("notification email sent", zap.Uint("abstract_id", abstractID), zap.Strings("to", to))
	}()
}

func abstractMeta(a models.Abstract) []emailMetaItem {
	return []emailMetaItem{
		{Label: "Reference", Value: fmt.Sprintf("#%d", a.ID)},
		{Label: "Title", Value: a.Title},
		{Label: "Track", Value: a.Track},
		{Label: "Subcategory", Value: a.Subcategory},
		{Label: "Format", Value: a.Format},
	}
}

func humanStatus(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
