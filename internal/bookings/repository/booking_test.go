package repository

import (
	"testing"
	"time"

	"locmaroc/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	filter := OverlapFilter("item-1", start, end)

	if filter["item_id"] != "item-1" {
		t.Errorf("item_id = %v", filter["item_id"])
	}

	status, ok := filter["status"].(bson.M)
	if !ok {
		t.Fatalf("status filter has type %T", filter["status"])
	}
	statuses, ok := status["$in"].([]model.BookingStatus)
	if !ok || len(statuses) != 3 {
		t.Fatalf("status $in = %v", status["$in"])
	}

	startCond, ok := filter["dates.start_date"].(bson.M)
	if !ok || startCond["$lte"] != end {
		t.Errorf("existing start must be <= requested end, got %v", filter["dates.start_date"])
	}
	endCond, ok := filter["dates.end_date"].(bson.M)
	if !ok || endCond["$gte"] != start {
		t.Errorf("existing end must be >= requested start, got %v", filter["dates.end_date"])
	}
}

func TestOverlapFilter_MatchesModelRule(t *testing.T) {
	existingStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existingEnd := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	reqStart := existingEnd
	reqEnd := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	filter := OverlapFilter("item-1", reqStart, reqEnd)
	lte := filter["dates.start_date"].(bson.M)["$lte"].(time.Time)
	gte := filter["dates.end_date"].(bson.M)["$gte"].(time.Time)

	matches := !existingStart.After(lte) && !existingEnd.Before(gte)
	if matches != model.Overlaps(existingStart, existingEnd, reqStart, reqEnd) {
		t.Error("query filter and model overlap rule disagree")
	}
	if !matches {
		t.Error("touching boundary must conflict")
	}
}

func TestDetailPipeline(t *testing.T) {
	match := bson.M{"renter_id": "u1"}
	pipeline := DetailPipeline(match)

	var stages []string
	for _, stage := range pipeline {
		stages = append(stages, stage[0].Key)
	}
	want := []string{"$match", "$sort", "$lookup", "$unwind", "$lookup", "$unwind", "$lookup", "$unwind"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stages = %v, want %v", stages, want)
		}
	}

	if pipeline[0][0].Value.(bson.M)["renter_id"] != "u1" {
		t.Errorf("match stage = %v", pipeline[0][0].Value)
	}

	joins := map[string]string{}
	for _, i := range []int{2, 4, 6} {
		lookup := pipeline[i][0].Value.(bson.M)
		joins[lookup["as"].(string)] = lookup["from"].(string)
	}
	if joins["item"] != "Items" || joins["renter"] != "Users" || joins["owner"] != "Users" {
		t.Errorf("joins = %v", joins)
	}

	unwind := pipeline[3][0].Value.(bson.M)
	if unwind["preserveNullAndEmptyArrays"] != true {
		t.Errorf("a missing item must not drop the booking: %v", unwind)
	}
}
