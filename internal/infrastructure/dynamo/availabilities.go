package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medportal-notify/internal/domain"
)

// AvailabilityRepo provides typed DynamoDB operations for the availabilities table
// (PK doctor_id, SK availability_id).
type AvailabilityRepo struct {
	client    API
	tableName string
}

func NewAvailabilityRepo(client API, tableName string) *AvailabilityRepo {
	return &AvailabilityRepo{client: client, tableName: tableName}
}

func (r *AvailabilityRepo) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Availability, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		KeyConditionExpression:   aws.String("#d = :d"),
		ExpressionAttributeNames: map[string]string{"#d": fieldDoctorID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: doctorID},
		},
	})
	var slots []domain.Availability
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query availabilities of %s: %w", doctorID, err)
		}
		var batch []domain.Availability
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		slots = append(slots, batch...)
	}
	return slots, nil
}

// Delete permanently removes a slot (no soft delete for availabilities).
func (r *AvailabilityRepo) Delete(ctx context.Context, doctorID, availabilityID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldDoctorID, doctorID, fieldAvailabilityID, availabilityID),
	})
	return err
}
