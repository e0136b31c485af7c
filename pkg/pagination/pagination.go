package pagination

const (
	// DefaultPage is used when the caller omits the page number.
	DefaultPage = 1
	// DefaultSize is the standard page size when a size is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any list query can request.
	MaxSize = 100
)

// PageParams holds page/size inputs from controllers or services.
type PageParams struct {
	Page int
	Size int
}

// Normalize enforces the defaults and the maximum page size.
func (p PageParams) Normalize() PageParams {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns how many rows precede the requested page.
func (p PageParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Page is the list payload returned by every paginated endpoint.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPage assembles a page from a slice and the unpaged total.
func NewPage[T any](items []T, params PageParams, total int64) Page[T] {
	n := params.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       n.Page,
		Size:       n.Size,
		Total:      total,
		TotalPages: TotalPages(total, n.Size),
	}
}

// TotalPages is ceil(total/size); zero rows means zero pages.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Map converts a page of one item type into another without touching the
// counters.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[U]{
		Items:      out,
		Page:       in.Page,
		Size:       in.Size,
		Total:      in.Total,
		TotalPages: in.TotalPages,
	}
}
