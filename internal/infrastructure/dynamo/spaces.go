package dynamo

import (
	"context"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SpaceRepo provides typed DynamoDB operations for the spaces table.
// PK: space_id. Spaces are created by the client app; this service only
// queries and deletes them.
type SpaceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSpaceRepo(client *dynamodb.Client, tableName string) *SpaceRepo {
	return &SpaceRepo{client: client, tableName: tableName}
}

// ListExpired returns every space whose expires_at is strictly before now.
// Follows pagination until the scan is exhausted.
func (r *SpaceRepo) ListExpired(ctx context.Context, now int64) ([]domain.SpaceRecord, error) {
	var spaces []domain.SpaceRecord
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("expires_at < :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: formatInt(now)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.SpaceRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		spaces = append(spaces, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return spaces, nil
}

// StageDelete adds the space's deletion to a grouped write.
func (r *SpaceRepo) StageDelete(g *GroupedWrite, spaceID string) {
	g.stageDelete(r.tableName, strKey("space_id", spaceID))
}
