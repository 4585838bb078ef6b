// Package notify runs the side effects of saving a story: refreshing the
// supernav box, purging edge caches and emailing maintainers about
// unpublished submissions.
package notify

import (
	"context"
	"fmt"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
)

const (
	// SupernavBoxLabel is the box read by the site navigation.
	SupernavBoxLabel = "supernav-python-success-stories"
	// SupernavTemplate renders a featured story for the supernav box.
	SupernavTemplate = "supernav.html"
)

// FragmentRenderer renders a standalone template to HTML.
type FragmentRenderer interface {
	RenderFragment(name string, data map[string]interface{}) (string, error)
}

// BoxStore upserts labelled HTML fragments.
type BoxStore interface {
	Upsert(ctx context.Context, label, content string) (*data.Box, bool, error)
}

// Purger invalidates an edge cache entry. It is fire-and-forget.
type Purger interface {
	Purge(ctx context.Context, path string)
}

// Message is an outgoing notification email.
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
	ReplyTo string
}

// Sender delivers a Message synchronously.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Options controls a single notification run.
type Options struct {
	// Raw marks bulk or fixture loads; no side effects run.
	Raw bool
}

// Result describes what StorySaved did.
type Result struct {
	BoxUpdated bool
	BoxCreated bool
	Purged     []string
	EmailSent  bool
}

// Notifier reacts to saved stories.
type Notifier struct {
	renderer FragmentRenderer
	boxes    BoxStore
	purger   Purger
	sender   Sender
	from     string
	to       []string
	log      logger.Logger
}

// New creates a Notifier. from is the default sender; to lists the maintainers
// who receive submission emails.
func New(renderer FragmentRenderer, boxes BoxStore, purger Purger, sender Sender, from string, to []string, log logger.Logger) *Notifier {
	return &Notifier{
		renderer: renderer,
		boxes:    boxes,
		purger:   purger,
		sender:   sender,
		from:     from,
		to:       to,
		log:      log.With(map[string]interface{}{"component": "notify"}),
	}
}

// StorySaved runs the post-save workflow for story. The story's Category
// must be loaded. An error from the email transport is returned as is, after
// the cache side effects have already happened.
func (n *Notifier) StorySaved(ctx context.Context, story *data.Story, opts Options) (*Result, error) {
	res := &Result{}
	if opts.Raw {
		return res, nil
	}

	if err := n.updateSupernav(ctx, story, res); err != nil {
		return res, err
	}

	if !story.IsPublished {
		if err := n.sender.Send(ctx, SubmissionMessage(story, n.from, n.to)); err != nil {
			return res, fmt.Errorf("failed to send submission email for %q: %w", story.Slug, err)
		}
		res.EmailSent = true
		n.log.Info(fmt.Sprintf("Submission email sent for story %q", story.Slug))
	}

	return res, nil
}

func (n *Notifier) updateSupernav(ctx context.Context, story *data.Story, res *Result) error {
	if story.IsPublished && story.Featured {
		content, err := n.renderer.RenderFragment(SupernavTemplate, map[string]interface{}{
			"Story": story,
		})
		if err != nil {
			return fmt.Errorf("failed to render supernav box: %w", err)
		}

		box, created, err := n.boxes.Upsert(ctx, SupernavBoxLabel, content)
		if err != nil {
			return fmt.Errorf("failed to update supernav box: %w", err)
		}
		res.BoxUpdated = true
		res.BoxCreated = created

		n.purge(ctx, box.AbsoluteURL(), res)
	}

	if story.IsPublished {
		n.purge(ctx, story.AbsoluteURL(), res)
	}
	return nil
}

func (n *Notifier) purge(ctx context.Context, path string, res *Result) {
	n.purger.Purge(ctx, path)
	res.Purged = append(res.Purged, path)
}

const submissionBody = `Name: %s
Company name: %s
Company URL: %s
Category: %s
Author: %s
Author email: %s
Pull quote:

%s

Content:

%s
`

// SubmissionMessage builds the email announcing an unpublished story.
// The company fields are the ones typed into the submission, not the linked company.
func SubmissionMessage(story *data.Story, from string, to []string) *Message {
	body := fmt.Sprintf(submissionBody,
		story.Name,
		story.CompanyName,
		story.CompanyURL,
		story.CategoryName(),
		story.Author,
		story.AuthorEmail,
		story.PullQuote,
		story.Content,
	)
	recipients := make([]string, len(to))
	copy(recipients, to)
	return &Message{
		Subject: "New success story submission: " + story.Name,
		Body:    body,
		From:    from,
		To:      recipients,
		ReplyTo: story.AuthorEmail,
	}
}
