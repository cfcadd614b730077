package dynamo

import (
	"context"
	"fmt"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// UserRepo provides typed DynamoDB operations for the users table.
// Accounts are created by the client app; the sweep only reads them and
// flips has_space.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.AccountRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var acc domain.AccountRecord
	if err := attributevalue.UnmarshalMap(out.Item, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// StageHasSpace adds a has_space flip for the account to a grouped write.
func (r *UserRepo) StageHasSpace(g *GroupedWrite, userID string, hasSpace bool) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldHasSpace: hasSpace})
	if err != nil {
		return err
	}
	g.stageUpdate(r.tableName, strKey("user_id", userID), ue)
	return nil
}
