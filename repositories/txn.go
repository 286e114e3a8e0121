package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner выполняет функцию внутри одной транзакции хранилища.
// Сервисы получают его инъекцией, в тестах контекст просто пробрасывается.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxnRunner struct {
	client *mongo.Client
}

func NewMongoTxnRunner(client *mongo.Client) TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
