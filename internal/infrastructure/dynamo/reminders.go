package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/medportal-notify/internal/domain"
)

// ReminderRepo provides typed DynamoDB operations for the appointment_reminders table.
type ReminderRepo struct {
	client    API
	tableName string
}

func NewReminderRepo(client API, tableName string) *ReminderRepo {
	return &ReminderRepo{client: client, tableName: tableName}
}

func (r *ReminderRepo) Put(ctx context.Context, s *domain.ReminderSet) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal reminder set: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Scan returns every reminder set. The full table is read on each call.
func (r *ReminderRepo) Scan(ctx context.Context) ([]domain.ReminderSet, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.tableName),
		ConsistentRead: aws.Bool(true),
	})
	var sets []domain.ReminderSet
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan reminder sets: %w", err)
		}
		var batch []domain.ReminderSet
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		sets = append(sets, batch...)
	}
	return sets, nil
}

// UpdateReminders replaces the whole entry list of one reminder set in a single write.
func (r *ReminderRepo) UpdateReminders(ctx context.Context, reminderSetID string, entries []domain.ReminderEntry) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldReminders: entries,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldReminderSetID, reminderSetID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
