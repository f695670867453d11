package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medportal-notify/internal/domain"
)

// AppointmentRepo provides typed DynamoDB operations for the appointments table.
type AppointmentRepo struct {
	client    API
	tableName string
}

func NewAppointmentRepo(client API, tableName string) *AppointmentRepo {
	return &AppointmentRepo{client: client, tableName: tableName}
}

// Scan returns every appointment. The full table is read on each call.
func (r *AppointmentRepo) Scan(ctx context.Context) ([]domain.Appointment, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.tableName),
		ConsistentRead: aws.Bool(true),
	})
	var appts []domain.Appointment
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan appointments: %w", err)
		}
		var batch []domain.Appointment
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		appts = append(appts, batch...)
	}
	return appts, nil
}

// TransitionStatus moves an appointment from status `from` to `to`, stamping updated_at.
// It returns domain.ErrConflict when the stored status is no longer `from`.
func (r *AppointmentRepo) TransitionStatus(ctx context.Context, appointmentID, from, to string, at time.Time) error {
	ts, err := attributevalue.Marshal(at.UTC())
	if err != nil {
		return fmt.Errorf("marshal updated_at: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldAppointmentID, appointmentID),
		UpdateExpression:    aws.String("SET #s = :to, #u = :at"),
		ConditionExpression: aws.String("#s = :from"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: to},
			":from": &types.AttributeValueMemberS{Value: from},
			":at":   ts,
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("appointment %s is no longer %s: %w", appointmentID, from, domain.ErrConflict)
	}
	return err
}
