package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxTransactItems is the DynamoDB TransactWriteItems limit per request.
const maxTransactItems = 100

// GroupedWrite accumulates writes across tables and commits them in chunks
// bounded by the store's transaction limit. Each chunk applies atomically;
// the group as a whole is a unit of submission, not a single transaction.
type GroupedWrite struct {
	client *dynamodb.Client
	items  []types.TransactWriteItem
}

func NewGroupedWrite(client *dynamodb.Client) *GroupedWrite {
	return &GroupedWrite{client: client}
}

func (g *GroupedWrite) Len() int { return len(g.items) }

func (g *GroupedWrite) stageUpdate(table string, key map[string]types.AttributeValue, ue *updateExpr) {
	g.items = append(g.items, types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(table),
			Key:                       key,
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		},
	})
}

func (g *GroupedWrite) stageDelete(table string, key map[string]types.AttributeValue) {
	g.items = append(g.items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(table),
			Key:       key,
		},
	})
}

// Commit submits all staged writes in chunks of at most maxTransactItems.
// On error the already-committed chunks stay applied; callers rely on the
// next sweep cycle to pick up whatever is left.
func (g *GroupedWrite) Commit(ctx context.Context) error {
	for _, chunk := range chunkItems(g.items, maxTransactItems) {
		_, err := g.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: chunk,
		})
		if err != nil {
			return err
		}
	}
	g.items = nil
	return nil
}

func chunkItems(items []types.TransactWriteItem, size int) [][]types.TransactWriteItem {
	var chunks [][]types.TransactWriteItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
