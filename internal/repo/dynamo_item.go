package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
)

const (
	attrID          = "id"
	attrCreatedAt   = "created_at"
	attrUpdatedAt   = "updated_at"
	attrTitle       = "title"
	attrDescription = "description"
)

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID: &types.AttributeValueMemberS{Value: id},
	}
}

// encodeItem always writes description, as NULL when the task has none.
func encodeItem(t model.Task) map[string]types.AttributeValue {
	var description types.AttributeValue = &types.AttributeValueMemberNULL{Value: true}
	if t.Description != nil {
		description = &types.AttributeValueMemberS{Value: *t.Description}
	}

	return map[string]types.AttributeValue{
		attrID:          &types.AttributeValueMemberS{Value: t.ID},
		attrCreatedAt:   &types.AttributeValueMemberS{Value: formatTime(t.CreatedAt)},
		attrUpdatedAt:   &types.AttributeValueMemberS{Value: formatTime(t.UpdatedAt)},
		attrTitle:       &types.AttributeValueMemberS{Value: t.Title},
		attrDescription: description,
	}
}

// decodeItem checks every attribute, nothing enforces a schema on the table.
// A missing or NULL description decodes as no description.
func decodeItem(item map[string]types.AttributeValue) (model.Task, error) {
	var (
		t   model.Task
		err error
	)

	if t.ID, err = requiredString(item, attrID); err != nil {
		return model.Task{}, err
	}
	if t.CreatedAt, err = requiredTime(item, attrCreatedAt); err != nil {
		return model.Task{}, err
	}
	if t.UpdatedAt, err = requiredTime(item, attrUpdatedAt); err != nil {
		return model.Task{}, err
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return model.Task{}, &MalformedRecordError{Attribute: attrUpdatedAt, Reason: "is before created_at"}
	}
	if t.Title, err = requiredString(item, attrTitle); err != nil {
		return model.Task{}, err
	}

	switch v := item[attrDescription].(type) {
	case nil, *types.AttributeValueMemberNULL:
	case *types.AttributeValueMemberS:
		desc := v.Value
		t.Description = &desc
	default:
		return model.Task{}, wrongType(attrDescription, "S or NULL", v)
	}

	return t, nil
}

func requiredString(item map[string]types.AttributeValue, name string) (string, error) {
	av, ok := item[name]
	if !ok || av == nil {
		return "", &MalformedRecordError{Attribute: name, Reason: "is missing"}
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", wrongType(name, "S", av)
	}
	if strings.TrimSpace(s.Value) == "" {
		return "", &MalformedRecordError{Attribute: name, Reason: "is empty"}
	}
	return s.Value, nil
}

func requiredTime(item map[string]types.AttributeValue, name string) (time.Time, error) {
	s, err := requiredString(item, name)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &MalformedRecordError{
			Attribute: name,
			Reason:    fmt.Sprintf("is not an RFC 3339 timestamp: %q", s),
		}
	}
	return ts.UTC(), nil
}

func wrongType(name, want string, av types.AttributeValue) error {
	return &MalformedRecordError{
		Attribute: name,
		Reason:    fmt.Sprintf("has type %s, want %s", attributeType(av), want),
	}
}

func attributeType(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case *types.AttributeValueMemberM:
		return "M"
	case *types.AttributeValueMemberL:
		return "L"
	case *types.AttributeValueMemberSS:
		return "SS"
	case *types.AttributeValueMemberNS:
		return "NS"
	case *types.AttributeValueMemberBS:
		return "BS"
	default:
		return fmt.Sprintf("%T", av)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
