package seeder

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestReadIDsAscending(t *testing.T) {
	db := newFakeDB()
	db.insert(Doctors, 12, 3, 40, 7, 5)

	ids, err := NewIDReader(db).ReadIDs(context.Background(), Doctors, "id")
	if err != nil {
		t.Fatalf("ReadIDs failed: %v", err)
	}
	want := []int64{3, 5, 7, 12, 40}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestReadIDsAfterSeed(t *testing.T) {
	db := newFakeDB()
	s := newTestSeeder(t, db)
	if _, err := s.Seed(context.Background(), smallRun(100, 10, 0, 0)); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	reader := NewIDReader(db)
	for table, n := range map[string]int{Patients: 100, Doctors: 10} {
		ids, err := reader.ReadIDs(context.Background(), table, "id")
		if err != nil {
			t.Fatalf("ReadIDs(%s) failed: %v", table, err)
		}
		if len(ids) != n {
			t.Fatalf("%s: expected %d ids, got %d", table, n, len(ids))
		}
		for i, id := range ids {
			if id != int64(i+1) {
				t.Errorf("%s: expected id %d at position %d, got %d", table, i+1, i, id)
				break
			}
		}
	}
}

func TestReadIDsEmptyTable(t *testing.T) {
	ids, err := NewIDReader(newFakeDB()).ReadIDs(context.Background(), Patients, "id")
	if err != nil {
		t.Fatalf("ReadIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestReadIDsWrapsError(t *testing.T) {
	db := newFakeDB()
	db.readErr[Patients] = errInjected

	_, err := NewIDReader(db).ReadIDs(context.Background(), Patients, "id")
	if !errors.Is(err, errInjected) {
		t.Errorf("expected the read error to be wrapped, got %v", err)
	}
}

func TestReadIDsRejectsIdentifiers(t *testing.T) {
	reader := NewIDReader(newFakeDB())
	if _, err := reader.ReadIDs(context.Background(), "Patients; DROP TABLE x", "id"); err == nil {
		t.Error("expected an invalid table name to be rejected")
	}
	if _, err := reader.Count(context.Background(), "bad name"); err == nil {
		t.Error("expected an invalid table name to be rejected by Count")
	}
}

func TestCount(t *testing.T) {
	db := newFakeDB()
	db.insert(Appointments, 9, 2, 31)

	reader := NewIDReader(db)
	n, err := reader.Count(context.Background(), Appointments)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}

	n, err = reader.Count(context.Background(), MedicalHistory)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}
