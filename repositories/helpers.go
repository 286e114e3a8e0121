package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
)

func checkMatchedCount(result *mongo.UpdateResult, notFoundError error) error {
	if result.MatchedCount == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}
