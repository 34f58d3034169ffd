package repository

import (
	"context"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository stores users as documents of the "users"
// collection, keyed by user id.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = authdomain.RoleMerchandiser
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	return err
}

func (r *firestoreUserRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	docs, err := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(docs[0])
}

func (r *firestoreUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeUser(doc)
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	return err
}

func decodeUser(doc *firestore.DocumentSnapshot) (*authdomain.User, error) {
	var user authdomain.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = doc.Ref.ID
	return &user, nil
}
