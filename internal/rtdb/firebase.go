// README: Firebase Realtime Database implementation of the Database contract.
package rtdb

import (
	"context"

	"firebase.google.com/go/v4/db"
)

type firebaseDatabase struct {
	client *db.Client
}

// NewFirebase wraps an initialised Admin SDK database client.
func NewFirebase(client *db.Client) Database {
	return &firebaseDatabase{client: client}
}

func (f *firebaseDatabase) Get(ctx context.Context, path string, v any) error {
	return f.client.NewRef(path).Get(ctx, v)
}

func (f *firebaseDatabase) Set(ctx context.Context, path string, v any) error {
	return f.client.NewRef(path).Set(ctx, v)
}

func (f *firebaseDatabase) Update(ctx context.Context, path string, fields map[string]any) error {
	return f.client.NewRef(path).Update(ctx, fields)
}

func (f *firebaseDatabase) Push(ctx context.Context, path string, v any) (string, error) {
	ref, err := f.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", err
	}
	return ref.Key, nil
}

func (f *firebaseDatabase) Transaction(ctx context.Context, path string, fn TxnFunc) error {
	return f.client.NewRef(path).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		return fn(node.Unmarshal)
	})
}

func (f *firebaseDatabase) GetByChildValue(ctx context.Context, path, child string, value, v any) error {
	return f.client.NewRef(path).OrderByChild(child).EqualTo(value).Get(ctx, v)
}
