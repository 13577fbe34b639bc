package xetcd2

import (
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// endpointBreakers 每端点一个熔断器。
// 熔断打开的端点快速失败（gobreaker.ErrOpenState），该错误与其他
// 端点错误一样按顺序记录，随后继续尝试下一个端点，不改变端点顺序
// 与"每端点至多一次尝试"的语义。
type endpointBreakers struct {
	minRequests uint32
	ratio       float64
	timeout     time.Duration

	mu sync.Mutex
	m  map[string]*gobreaker.CircuitBreaker[*http.Response]
}

func newEndpointBreakers(minRequests uint32, ratio float64, timeout time.Duration) *endpointBreakers {
	return &endpointBreakers{
		minRequests: minRequests,
		ratio:       ratio,
		timeout:     timeout,
		m:           make(map[string]*gobreaker.CircuitBreaker[*http.Response]),
	}
}

// do 经指定端点的熔断器执行 fn。熔断器按端点惰性创建。
func (b *endpointBreakers) do(endpoint string, fn func() (*http.Response, error)) (*http.Response, error) {
	return b.breakerFor(endpoint).Execute(fn)
}

func (b *endpointBreakers) breakerFor(endpoint string) *gobreaker.CircuitBreaker[*http.Response] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.m[endpoint]; ok {
		return cb
	}

	minReqs := b.minRequests
	ratio := b.ratio
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "xetcd2:" + endpoint,
		Timeout: b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minReqs {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= ratio
		},
	})
	b.m[endpoint] = cb
	return cb
}
