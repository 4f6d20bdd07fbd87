package postings_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/postings"
)

func Example() {
	ctx := context.Background()

	store, err := postings.Open[uint64](ctx, blobstore.NewMemoryStore())
	if err != nil {
		panic(err)
	}
	defer store.Close()

	_ = store.SaveMany(ctx, map[string]*ewah.Bitmap64{
		"lang:go":   ewah.BitmapOf(1, 4, 9, 16),
		"topic:db":  ewah.BitmapOf(4, 8, 16, 32),
		"year:2024": ewah.BitmapOf(1, 2, 4, 8, 16),
	})

	both, _ := store.Intersect(ctx, "lang:go", "topic:db")
	fmt.Println(both)

	twoOfThree, _ := store.Threshold(ctx, 2, "lang:go", "topic:db", "year:2024")
	fmt.Println(twoOfThree)

	_, _ = store.Commit(ctx)
	cat, _ := store.Catalog(ctx)
	fmt.Println(cat.Names())
	// Output:
	// {4,16}
	// {1,4,8,16}
	// [lang:go topic:db year:2024]
}
