package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/pkg/id"
)

const userCreatedAtIndex = "user_id-created_at-index"

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    API
	tableName string
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

// Create assigns an id (and creation time, when unset) and inserts n.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = id.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(notification_id)"),
	})
	if err != nil {
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// ListUnread queries the user_id-created_at GSI for userID, keeps read=false
// items, and returns them newest first.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := r.queryUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, err
	}
	// created_at is an RFC 3339 string whose fractional part varies in width,
	// so the index order is not trusted on its own.
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// MarkRead sets read=true. Marking an already read notification is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldNotificationID, notificationID),
		UpdateExpression:    aws.String("SET #r = :t"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#r":  fieldRead,
			"#id": fieldNotificationID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	return err
}

// MarkAllRead flips every unread notification of userID in one transaction
// per chunk of maxTransactItems. It returns the number of notifications flipped.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("userId is required: %w", domain.ErrBadRequest)
	}
	items, err := r.queryUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if v, ok := item[fieldNotificationID].(*types.AttributeValueMemberS); ok {
			ids = append(ids, v.Value)
		}
	}

	flipped := 0
	for _, batch := range chunk(ids, maxTransactItems) {
		actions := make([]types.TransactWriteItem, 0, len(batch))
		for _, nid := range batch {
			actions = append(actions, types.TransactWriteItem{
				Update: &types.Update{
					TableName:           aws.String(r.tableName),
					Key:                 strKey(fieldNotificationID, nid),
					UpdateExpression:    aws.String("SET #r = :t"),
					ConditionExpression: aws.String("#u = :uid"),
					ExpressionAttributeNames: map[string]string{
						"#r": fieldRead,
						"#u": fieldUserID,
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":t":   &types.AttributeValueMemberBOOL{Value: true},
						":uid": &types.AttributeValueMemberS{Value: userID},
					},
				},
			})
		}
		if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: actions,
		}); err != nil {
			return flipped, fmt.Errorf("mark all read for %s: %w", userID, err)
		}
		flipped += len(batch)
	}
	return flipped, nil
}

func (r *NotificationRepo) queryUnread(ctx context.Context, userID string) ([]map[string]types.AttributeValue, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(userCreatedAtIndex),
		KeyConditionExpression: aws.String("#u = :uid"),
		FilterExpression:       aws.String("#r = :f"),
		ScanIndexForward:       aws.Bool(false),
		ExpressionAttributeNames: map[string]string{
			"#u": fieldUserID,
			"#r": fieldRead,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query unread notifications: %w", err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
