// Package gmailstore talks to the Gmail REST API on behalf of the triage
// engine. It is the only package that knows about Gmail wire types; the rest
// of the application sees core.MailStore.
package gmailstore

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// user is the special Gmail user id for the authenticated account.
const user = "me"

// Store implements core.MailStore against the Gmail API.
type Store struct {
	srv        *gmail.Service
	logger     *zap.Logger
	maxResults int64
}

// NewStore builds a Gmail-backed mail store. The client secret is read from
// credentialsFile and the cached OAuth token from tokenFile; a missing token
// triggers the interactive auth-code flow. Failures here are credential
// problems and wrap core.ErrCredentials.
func NewStore(ctx context.Context, logger *zap.Logger, credentialsFile, tokenFile string, maxResults int64) (*Store, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading client secret file %s: %w", core.ErrCredentials, credentialsFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing client secret file: %w", core.ErrCredentials, err)
	}

	httpClient, err := oauthClient(ctx, oauthConfig, tokenFile, logger)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: creating gmail service: %w", core.ErrCredentials, err)
	}

	logger.Info("Connected to Gmail",
		zap.String("scope", gmail.GmailModifyScope),
		zap.Int64("max_results", maxResults))

	return &Store{
		srv:        srv,
		logger:     logger,
		maxResults: maxResults,
	}, nil
}

// ListCandidates returns the ids of messages matching the search query,
// newest first. A single page of at most maxResults ids is returned per
// call; because triaged messages drop out of the query, the next cycle
// naturally picks up the remainder of a backlog.
func (s *Store) ListCandidates(ctx context.Context, query string) ([]string, error) {
	resp, err := s.srv.Users.Messages.List(user).
		Q(query).
		MaxResults(s.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, core.NewProviderError("messages.list", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMetadata fetches the subject, sender and snippet of a single message.
// The metadata format keeps the payload small; bodies are never downloaded.
func (s *Store) GetMetadata(ctx context.Context, id string) (*core.Message, error) {
	msg, err := s.srv.Users.Messages.Get(user, id).
		Format("metadata").
		MetadataHeaders("Subject", "From").
		Context(ctx).
		Do()
	if err != nil {
		return nil, core.NewProviderError("messages.get", err)
	}
	return parseMessage(msg), nil
}

// ModifyLabels applies label additions and removals to a message in one
// request.
func (s *Store) ModifyLabels(ctx context.Context, id string, add, remove []core.LabelRef) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    labelIDs(add),
		RemoveLabelIds: labelIDs(remove),
	}
	if _, err := s.srv.Users.Messages.Modify(user, id, req).Context(ctx).Do(); err != nil {
		return core.NewProviderError("messages.modify", err)
	}
	return nil
}

// ListLabels returns every label defined in the mailbox, system and user
// labels alike.
func (s *Store) ListLabels(ctx context.Context) ([]core.LabelRef, error) {
	resp, err := s.srv.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, core.NewProviderError("labels.list", err)
	}

	refs := make([]core.LabelRef, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		refs = append(refs, core.LabelRef{ID: l.Id, Name: l.Name})
	}
	return refs, nil
}

// CreateLabel creates a user label. Hidden labels are kept out of both the
// label list and the message list in the Gmail UI.
func (s *Store) CreateLabel(ctx context.Context, spec core.LabelSpec) (core.LabelRef, error) {
	label := &gmail.Label{Name: spec.Name}
	if spec.Hidden {
		label.LabelListVisibility = "labelHide"
		label.MessageListVisibility = "hide"
	}

	created, err := s.srv.Users.Labels.Create(user, label).Context(ctx).Do()
	if err != nil {
		return core.LabelRef{}, core.NewProviderError("labels.create", err)
	}
	return core.LabelRef{ID: created.Id, Name: created.Name}, nil
}

func labelIDs(refs []core.LabelRef) []string {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
