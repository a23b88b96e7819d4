package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lumenapp/server/core"
)

// userDoc is the persisted shape of a user. Identifier fields use
// omitempty so empty strings stay out of the sparse unique indexes.
type userDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email,omitempty"`
	Phone        string        `bson:"phone,omitempty"`
	Picture      string        `bson:"picture,omitempty"`
	PasswordHash string        `bson:"password_hash"`
	FederatedID  string        `bson:"federated_id,omitempty"`
	AuthMode     string        `bson:"auth_mode"`
	OtpHash      string        `bson:"otp_hash,omitempty"`
	OtpExpiresAt *time.Time    `bson:"otp_expires_at,omitempty"`
	OtpChannel   string        `bson:"otp_channel,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
}

func fromUser(u *core.User) *userDoc {
	doc := &userDoc{
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Picture:      u.Picture,
		PasswordHash: u.PasswordHash,
		FederatedID:  u.FederatedID,
		AuthMode:     string(u.AuthMode),
		CreatedAt:    u.CreatedAt,
	}
	if u.Otp != nil {
		doc.OtpHash = u.Otp.Hash
		expires := u.Otp.ExpiresAt
		doc.OtpExpiresAt = &expires
		doc.OtpChannel = string(u.Otp.Channel)
	}
	return doc
}

func (d *userDoc) toUser() *core.User {
	u := &core.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Picture:      d.Picture,
		PasswordHash: d.PasswordHash,
		FederatedID:  d.FederatedID,
		AuthMode:     core.AuthMode(d.AuthMode),
		CreatedAt:    d.CreatedAt,
	}
	if d.OtpHash != "" && d.OtpExpiresAt != nil {
		u.Otp = &core.PendingOtp{
			Hash:      d.OtpHash,
			ExpiresAt: *d.OtpExpiresAt,
			Channel:   core.OtpChannel(d.OtpChannel),
		}
	}
	return u
}

func (s *Store) FindByIdentity(ctx context.Context, q core.IdentityQuery) (*core.User, error) {
	if q.Empty() {
		return nil, core.ErrNotFound
	}

	var clauses bson.A
	if q.Email != "" {
		clauses = append(clauses, bson.M{"email": q.Email})
	}
	if q.Phone != "" {
		clauses = append(clauses, bson.M{"phone": q.Phone})
	}
	if q.FederatedID != "" {
		clauses = append(clauses, bson.M{"federated_id": q.FederatedID})
	}

	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"$or": clauses}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	var doc userDoc
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *Store) Create(ctx context.Context, u *core.User) (*core.User, error) {
	doc := fromUser(u)
	doc.ID = bson.NewObjectID()
	doc.CreatedAt = time.Now().UTC()

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, core.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *Store) Update(ctx context.Context, id string, upd core.UserUpdate) (*core.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	set := bson.M{}
	unset := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		// Clearing a phone must remove the field, not store "", or the
		// sparse unique index would see collisions.
		if *upd.Phone == "" {
			unset["phone"] = ""
		} else {
			set["phone"] = *upd.Phone
		}
	}
	if upd.Picture != nil {
		set["picture"] = *upd.Picture
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.FederatedID != nil {
		set["federated_id"] = *upd.FederatedID
	}
	if upd.Otp != nil {
		set["otp_hash"] = upd.Otp.Hash
		set["otp_expires_at"] = upd.Otp.ExpiresAt
		set["otp_channel"] = string(upd.Otp.Channel)
	}
	if upd.ClearOtp {
		unset["otp_hash"] = ""
		unset["otp_expires_at"] = ""
		unset["otp_channel"] = ""
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return s.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, core.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, core.ErrConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.toUser(), nil
}
