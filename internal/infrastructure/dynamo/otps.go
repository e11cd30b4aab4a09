package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oklog/ulid/v2"
	"github.com/suqapp/backend/internal/domain"
)

// OTPRepo provides typed DynamoDB operations for the otps table.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Newest returns the most recently created unused, unexpired record for the
// mobile that carries the given code. The mobile-index range key is the ULID,
// so a backward scan yields records newest-first.
func (r *OTPRepo) Newest(ctx context.Context, mobile, code string, now time.Time) (*domain.OTPRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("mobile-index"),
		KeyConditionExpression: aws.String("mobile = :m"),
		FilterExpression:       aws.String("#c = :c AND #u = :f AND expires_at > :now"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldCode,
			"#u": fieldUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m":   &types.AttributeValueMemberS{Value: mobile},
			":c":   &types.AttributeValueMemberS{Value: code},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkUsed consumes a record. The condition is the double-consume guard: two
// verifiers can both read the record unused, but only one conditional update
// succeeds; the loser gets ErrConflict.
func (r *OTPRepo) MarkUsed(ctx context.Context, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("otp_id", otpID),
		UpdateExpression:    aws.String("SET #u = :t"),
		ConditionExpression: aws.String("#u = :f"),
		ExpressionAttributeNames: map[string]string{
			"#u": fieldUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("otp already consumed: %w", domain.ErrConflict)
	}
	return err
}

// CountIssuedSince counts records created for the mobile after the cutoff.
// ULIDs encode their creation time, so the range condition needs no filter:
// the smallest possible ULID for the cutoff timestamp bounds the query.
func (r *OTPRepo) CountIssuedSince(ctx context.Context, mobile string, since time.Time) (int, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("mobile-index"),
		KeyConditionExpression: aws.String("mobile = :m AND otp_id >= :min"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m":   &types.AttributeValueMemberS{Value: mobile},
			":min": &types.AttributeValueMemberS{Value: minULIDAt(since)},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// minULIDAt returns the lexicographically smallest ULID for the given time
// (timestamp bits set, entropy all zero).
func minULIDAt(t time.Time) string {
	var u ulid.ULID
	_ = u.SetTime(ulid.Timestamp(t))
	return u.String()
}
