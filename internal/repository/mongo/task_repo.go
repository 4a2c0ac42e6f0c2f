// internal/repository/mongo/task_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const taskCollectionName = "scheduled_tasks"

// mongoTaskRepository implements repository.TaskRepository
type mongoTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTaskRepository creates a new ScheduledTask repository.
func NewMongoTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &mongoTaskRepository{
		collection: db.Collection(taskCollectionName),
	}
}

// CreateMany inserts a plan's tasks in bulk.
func (r *mongoTaskRepository) CreateMany(ctx context.Context, tasks []domain.ScheduledTask) error {
	if len(tasks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(tasks))
	for i := range tasks {
		if tasks[i].PlanID == primitive.NilObjectID {
			return errors.New("task requires a plan ID")
		}
		if tasks[i].ID == primitive.NilObjectID {
			tasks[i].ID = primitive.NewObjectID()
		}
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
		docs = append(docs, tasks[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves a single task by its ID.
func (r *mongoTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *mongoTaskRepository) find(ctx context.Context, filter bson.M) ([]domain.ScheduledTask, error) {
	var tasks []domain.ScheduledTask
	findOptions := options.Find().SetSort(bson.D{
		{Key: "scheduledDate", Value: 1},
		{Key: "slot", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByPlanID returns all tasks of a plan ordered by date then slot.
func (r *mongoTaskRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error) {
	return r.find(ctx, bson.M{"planId": planID})
}

// GetIncompleteByPlanID returns the plan's not-yet-completed tasks.
func (r *mongoTaskRepository) GetIncompleteByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error) {
	return r.find(ctx, bson.M{"planId": planID, "isCompleted": false})
}

// GetByPlanAndDateRange returns a plan's tasks scheduled in [from, to].
func (r *mongoTaskRepository) GetByPlanAndDateRange(ctx context.Context, planID primitive.ObjectID, from, to time.Time) ([]domain.ScheduledTask, error) {
	return r.find(ctx, bson.M{
		"planId":        planID,
		"scheduledDate": bson.M{"$gte": from, "$lte": to},
	})
}

// MarkComplete transitions an incomplete task to complete. The filter guards
// on isCompleted so a task completes exactly once: a concurrent or repeated
// call matches nothing and reports false.
func (r *mongoTaskRepository) MarkComplete(ctx context.Context, id primitive.ObjectID, completion domain.TaskCompletion) (bool, error) {
	set := bson.M{
		"isCompleted": true,
		"completedAt": completion.CompletedAt,
		"updatedAt":   time.Now().UTC(),
	}
	if completion.LinkedActivityID != "" {
		set["linkedActivityId"] = completion.LinkedActivityID
	}
	if completion.ActualDurationMinutes != nil {
		set["actualDurationMinutes"] = *completion.ActualDurationMinutes
	}
	if completion.ActualCalories != nil {
		set["actualCalories"] = *completion.ActualCalories
	}
	if completion.Notes != "" {
		set["notes"] = completion.Notes
	}

	filter := bson.M{"_id": id, "isCompleted": false}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// ApplyAdjustment rewrites duration/intensity fields of an incomplete task.
// The isCompleted guard makes a task that completed mid-adjustment a silent
// skip instead of an overwrite.
func (r *mongoTaskRepository) ApplyAdjustment(ctx context.Context, id primitive.ObjectID, durationMinutes int, intensity domain.Intensity, adj *domain.TaskAdjustment) (bool, error) {
	set := bson.M{
		"durationMinutes": durationMinutes,
		"intensity":       intensity,
		"updatedAt":       time.Now().UTC(),
	}
	if adj != nil {
		set["adjustment"] = adj
	}

	filter := bson.M{"_id": id, "isCompleted": false}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// DeleteByPlanID removes all tasks belonging to a plan (cascade delete).
func (r *mongoTaskRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureTaskIndexes creates necessary indexes. Call during startup.
func EnsureTaskIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: a plan's tasks in calendar order. Unique:
			// one task per (plan, date, slot).
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "scheduledDate", Value: 1}, {Key: "slot", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Reconciliation candidate set
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "isCompleted", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
