package util

import (
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/turnon/tasks/tasklist/common"
)

func rangeInts(n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = i
	}
	return res
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		page, size int
		want       []int
	}{
		{1, 5, []int{0, 1, 2, 3, 4}},
		{2, 5, []int{5, 6, 7, 8, 9}},
		{3, 5, []int{}},
		{2, 3, []int{3, 4, 5}},
		{4, 3, []int{9}},
		{0, 5, []int{0, 1, 2, 3, 4}},
		{1, 0, []int{0}},
		{-3, -1, []int{0}},
	}
	for _, tt := range tests {
		got := Paginate(rangeInts(10), tt.page, tt.size)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("page=%d size=%d: got %v, want %v", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestPaginateStream(t *testing.T) {
	elems := rangeInts(10)
	pulled := 0
	next := func() (int, error) {
		if pulled >= len(elems) {
			return 0, io.EOF
		}
		pulled++
		return elems[pulled-1], nil
	}

	got, err := PaginateStream(next, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Fatalf("got %v", got)
	}
	if pulled != 6 {
		t.Fatalf("pulled %d elements, want 6", pulled)
	}

	pulled = 0
	got, err = PaginateStream(next, 3, 5)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v %v", got, err)
	}

	boom := errors.New("boom")
	_, err = PaginateStream(func() (int, error) { return 0, boom }, 1, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestParsePageParams(t *testing.T) {
	p, err := ParsePageParams("", "", 10)
	if err != nil || p != (PageParams{Page: 1, Size: 10}) {
		t.Fatalf("got %+v %v", p, err)
	}

	p, err = ParsePageParams("0", "-2", 10)
	if err != nil || p != (PageParams{Page: 1, Size: 1}) {
		t.Fatalf("got %+v %v", p, err)
	}

	_, err = ParsePageParams("two", "", 10)
	var ve *common.ValidationError
	if !errors.As(err, &ve) || ve.Field != "page" {
		t.Fatalf("got %v", err)
	}
	_, err = ParsePageParams("1", "x", 10)
	if !errors.As(err, &ve) || ve.Field != "size" {
		t.Fatalf("got %v", err)
	}
}

func TestPaginateHugePage(t *testing.T) {
	const page = 4611686018427387904

	if got := Paginate([]int{1, 2, 3}, page, 4); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	if got := Paginate([]int{1, 2, 3}, 2, math.MaxInt); len(got) != 0 {
		t.Fatalf("got %v", got)
	}

	pulled := 0
	got, err := PaginateStream(func() (int, error) {
		pulled++
		return pulled, nil
	}, page, 4)
	if err != nil || len(got) != 0 || pulled != 0 {
		t.Fatalf("got %v %v, pulled %d", got, err, pulled)
	}

	p, err := ParsePageParams("4611686018427387904", "4", 10)
	if err != nil {
		t.Fatal(err)
	}
	if from, to := p.bounds(); from != math.MaxInt || to != math.MaxInt {
		t.Fatalf("bounds %d %d", from, to)
	}
}
