package xfirstok

import "context"

// Call 针对单个端点执行操作的闭包。
// E 为端点类型（通常是 url.URL 或 string），T 为成功结果类型。
type Call[E, T any] func(ctx context.Context, endpoint E) (T, error)

// First 按顺序对每个端点执行 call，返回第一个成功的结果。
//
// 参数：
//   - ctx: 上下文，取消后停止尝试剩余端点
//   - endpoints: 有序端点列表，调用期间不会被修改
//   - call: 单端点操作闭包
//
// 返回：
//   - T: 首个成功端点的结果
//   - []error: 成功时为 nil；全部失败时为按遭遇顺序排列的错误列表，
//     长度与已尝试的端点数一致。空端点列表返回空（非 nil）错误列表，
//     此时 call 不会被调用。
//
// 语义约束：
//   - 端点严格按调用方给定的顺序逐个尝试，不并发
//   - 任一端点成功立即返回，剩余端点不被触达
//   - 每个端点至多被尝试一次，没有额外的重试预算
//
// 设计决策: ctx 在每次尝试前检查。取消后继续遍历只会为每个剩余端点
// 追加一份相同的 context 错误，没有诊断价值，因此记录一次后即停止。
func First[E, T any](ctx context.Context, endpoints []E, call Call[E, T]) (T, []error) {
	var zero T
	if ctx == nil {
		return zero, []error{ErrNilContext}
	}
	if call == nil {
		return zero, []error{ErrNilCall}
	}

	errs := make([]error, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return zero, errs
		}

		result, err := call(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)
	}
	return zero, errs
}
