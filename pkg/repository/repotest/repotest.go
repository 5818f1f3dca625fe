// Package repotest holds the behavioral checks every todo.Repository backend
// must pass.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fluxorio/todos/pkg/todo"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) todo.Repository

// Options tunes the suite for backend differences.
type Options struct {
	// InsertionOrder asserts GetAll returns records in the order created.
	InsertionOrder bool
}

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory, opts Options) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		want := todo.New("Buy milk", todo.StringPtr("2 liters"))
		if _, err := repo.Create(ctx, want); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, found, err := repo.GetByID(ctx, want.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if !found {
			t.Fatal("GetByID() found = false, want true")
		}
		if !got.Equal(want) {
			t.Errorf("GetByID() = %+v, want %+v", got, want)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)

		_, found, err := repo.GetByID(context.Background(), "does-not-exist")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if found {
			t.Error("GetByID() found = true, want false")
		}
	})

	t.Run("GetAllEmpty", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("GetAll() len = %d, want 0", len(all))
		}
	})

	t.Run("GetAll", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC().Truncate(time.Microsecond)
		var created []todo.Todo
		for i, title := range []string{"first", "second", "third"} {
			item := todo.New(title, nil)
			item.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
			if _, err := repo.Create(ctx, item); err != nil {
				t.Fatalf("Create(%s) error = %v", title, err)
			}
			created = append(created, item)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != len(created) {
			t.Fatalf("GetAll() len = %d, want %d", len(all), len(created))
		}
		for i := range created {
			if !all[i].Equal(created[i]) {
				t.Errorf("GetAll()[%d] = %+v, want %+v", i, all[i], created[i])
			}
		}
	})

	t.Run("CreateDuplicateOverwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := todo.New("original", nil)
		if _, err := repo.Create(ctx, first); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		second := first
		second.Title = "replacement"
		if _, err := repo.Create(ctx, second); err != nil {
			t.Fatalf("Create() duplicate error = %v", err)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("GetAll() len = %d, want 1", len(all))
		}
		if all[0].Title != "replacement" {
			t.Errorf("Title = %q, want %q", all[0].Title, "replacement")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		item := todo.New("Buy milk", nil)
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		item.Title = "Buy oat milk"
		item.Description = todo.StringPtr("unsweetened")
		item.Completed = true
		if _, err := repo.Update(ctx, item); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, found, err := repo.GetByID(ctx, item.ID)
		if err != nil || !found {
			t.Fatalf("GetByID() = found %v, err %v", found, err)
		}
		if !got.Equal(item) {
			t.Errorf("GetByID() = %+v, want %+v", got, item)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(context.Background(), todo.New("ghost", nil))
		if !errors.Is(err, todo.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		keep := todo.New("keep", nil)
		drop := todo.New("drop", nil)
		for _, item := range []todo.Todo{keep, drop} {
			if _, err := repo.Create(ctx, item); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		if err := repo.Delete(ctx, drop.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if _, found, _ := repo.GetByID(ctx, drop.ID); found {
			t.Error("GetByID() after Delete found = true, want false")
		}
		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 1 || all[0].ID != keep.ID {
			t.Errorf("GetAll() = %+v, want only %s", all, keep.ID)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Delete(context.Background(), "does-not-exist")
		if !errors.Is(err, todo.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		item := todo.New("once", nil)
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, item.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := repo.Delete(ctx, item.ID); !errors.Is(err, todo.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ReturnedValuesAreCopies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		item := todo.New("immutable", todo.StringPtr("original"))
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		*item.Description = "mutated by caller"

		got, _, err := repo.GetByID(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.DescriptionOr("") != "original" {
			t.Errorf("Description = %q, want %q", got.DescriptionOr(""), "original")
		}

		*got.Description = "mutated again"
		again, _, _ := repo.GetByID(ctx, item.ID)
		if again.DescriptionOr("") != "original" {
			t.Errorf("Description after mutating result = %q, want %q", again.DescriptionOr(""), "original")
		}
	})

	if opts.InsertionOrder {
		t.Run("InsertionOrderSurvivesDelete", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			var ids []string
			for _, title := range []string{"a", "b", "c", "d"} {
				item := todo.New(title, nil)
				if _, err := repo.Create(ctx, item); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				ids = append(ids, item.ID)
			}
			if err := repo.Delete(ctx, ids[1]); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			all, err := repo.GetAll(ctx)
			if err != nil {
				t.Fatalf("GetAll() error = %v", err)
			}
			want := []string{ids[0], ids[2], ids[3]}
			if len(all) != len(want) {
				t.Fatalf("GetAll() len = %d, want %d", len(all), len(want))
			}
			for i, id := range want {
				if all[i].ID != id {
					t.Errorf("GetAll()[%d].ID = %s, want %s", i, all[i].ID, id)
				}
			}
		})
	}
}
