package testdb

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const keyAttribute = "id"

// FakeDynamo keeps items in memory and understands only the expressions the
// task repository sends. It is safe for concurrent use.
type FakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
	puts  int
}

func NewFakeDynamo() *FakeDynamo {
	return &FakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

// FailWith makes every following call return err. Pass nil to recover.
func (f *FakeDynamo) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

func (f *FakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := keyOf(in.Item)
	if in.ConditionExpression != nil && *in.ConditionExpression == "attribute_not_exists(#id)" {
		if _, exists := f.items[id]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	f.items[id] = cloneItem(in.Item)
	f.puts++
	return &dynamodb.PutItemOutput{}, nil
}

func (f *FakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := keyOf(in.Key)
	old, ok := f.items[id]
	delete(f.items, id)

	out := &dynamodb.DeleteItemOutput{}
	if ok && in.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

// Put stores item as is, bypassing any encoding. Used to plant broken items.
func (f *FakeDynamo) Put(item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[keyOf(item)] = cloneItem(item)
}

func (f *FakeDynamo) Item(id string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneItem(f.items[id])
}

// PutCount reports how many PutItem calls succeeded.
func (f *FakeDynamo) PutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func keyOf(item map[string]types.AttributeValue) string {
	if s, ok := item[keyAttribute].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
