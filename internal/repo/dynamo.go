package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
)

// ItemAPI is the part of *dynamodb.Client the repository uses.
type ItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoRepo stores each task as one item keyed by id. Writes replace the
// whole item, so there is never a partially written task.
type DynamoRepo struct {
	client ItemAPI
	table  string
	now    func() time.Time
}

func NewDynamoRepo(client ItemAPI, table string) *DynamoRepo {
	return &DynamoRepo{
		client: client,
		table:  table,
		now:    model.Now,
	}
}

func (r *DynamoRepo) Get(ctx context.Context, id string) (model.Task, error) {
	return r.load(ctx, "get", id)
}

func (r *DynamoRepo) Create(ctx context.Context, in model.CreateInput) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}

	t := model.NewTask(in, r.now())
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                encodeItem(t),
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrID,
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			err = fmt.Errorf("generated id already taken: %w", err)
		}
		return model.Task{}, backendErr("create", t.ID, err)
	}
	return t, nil
}

// Update rebuilds the full item from the stored one and puts it back in a
// single write. There is no condition on the put, the last writer wins.
func (r *DynamoRepo) Update(ctx context.Context, id string, in model.UpdateInput) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}

	existing, err := r.load(ctx, "update", id)
	if err != nil {
		return model.Task{}, err
	}

	updated, err := model.Apply(existing, in, r.now())
	if err != nil {
		return model.Task{}, err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      encodeItem(updated),
	})
	if err != nil {
		return model.Task{}, backendErr("update", id, err)
	}
	return updated, nil
}

func (r *DynamoRepo) Delete(ctx context.Context, id string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          itemKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return backendErr("delete", id, err)
	}
	if len(out.Attributes) == 0 {
		return notFound("delete", id)
	}
	return nil
}

func (r *DynamoRepo) load(ctx context.Context, op, id string) (model.Task, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Task{}, backendErr(op, id, err)
	}
	if len(out.Item) == 0 {
		return model.Task{}, notFound(op, id)
	}

	t, err := decodeItem(out.Item)
	if err != nil {
		return model.Task{}, fmt.Errorf("%s task %q: %w", op, id, err)
	}
	return t, nil
}
