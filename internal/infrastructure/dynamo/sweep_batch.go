package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// SweepBatch is the grouped write of one sweep cycle: account has_space flips
// plus space deletions, committed together in chunked transactions.
type SweepBatch struct {
	g      *GroupedWrite
	spaces *SpaceRepo
	users  *UserRepo
}

func NewSweepBatch(client *dynamodb.Client, spaces *SpaceRepo, users *UserRepo) *SweepBatch {
	return &SweepBatch{g: NewGroupedWrite(client), spaces: spaces, users: users}
}

func (b *SweepBatch) StageAccountUpdate(userID string, hasSpace bool) error {
	return b.users.StageHasSpace(b.g, userID, hasSpace)
}

func (b *SweepBatch) StageSpaceDelete(spaceID string) {
	b.spaces.StageDelete(b.g, spaceID)
}

func (b *SweepBatch) Len() int { return b.g.Len() }

func (b *SweepBatch) Commit(ctx context.Context) error { return b.g.Commit(ctx) }
