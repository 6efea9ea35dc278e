package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionSessions    = "sessions"
	subcollectionMessages = "messages"
)

// Firestore stores sessions at sessions/{id} and their messages at
// sessions/{id}/messages/{message_id}.
type Firestore struct {
	db *firestore.Client
	eb *goerr.Builder
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	db, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
			goerr.T(errs.TagDatabase))
	}

	return &Firestore{
		db: db,
		eb: goerr.NewBuilder(
			goerr.TV(errs.RepositoryKey, "firestore"),
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		),
	}, nil
}

func (r *Firestore) Close() error {
	return r.db.Close()
}

func (r *Firestore) PutSession(ctx context.Context, ssn *chat.Session) error {
	_, err := r.db.Collection(collectionSessions).Doc(ssn.ID.String()).Set(ctx, ssn)
	if err != nil {
		return r.eb.Wrap(err, "failed to put session",
			goerr.TV(errs.SessionIDKey, ssn.ID.String()),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	doc, err := r.db.Collection(collectionSessions).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, r.eb.Wrap(err, "failed to get session",
			goerr.TV(errs.SessionIDKey, id.String()),
			goerr.T(errs.TagDatabase))
	}

	var ssn chat.Session
	if err := doc.DataTo(&ssn); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to session",
			goerr.TV(errs.SessionIDKey, id.String()),
			goerr.T(errs.TagInternal))
	}
	return &ssn, nil
}

func (r *Firestore) PutMessage(ctx context.Context, message *chat.Message) error {
	_, err := r.db.Collection(collectionSessions).
		Doc(message.SessionID.String()).
		Collection(subcollectionMessages).
		Doc(message.ID.String()).
		Set(ctx, message)
	if err != nil {
		return r.eb.Wrap(err, "failed to put message",
			goerr.TV(errs.SessionIDKey, message.SessionID.String()),
			goerr.V("message_id", message.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) GetMessages(ctx context.Context, id types.SessionID) ([]*chat.Message, error) {
	iter := r.db.Collection(collectionSessions).
		Doc(id.String()).
		Collection(subcollectionMessages).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var messages []*chat.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query messages",
				goerr.TV(errs.SessionIDKey, id.String()),
				goerr.T(errs.TagDatabase))
		}

		var m chat.Message
		if err := doc.DataTo(&m); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to message",
				goerr.TV(errs.SessionIDKey, id.String()),
				goerr.T(errs.TagInternal))
		}
		messages = append(messages, &m)
	}
	return messages, nil
}
