package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ParamKind 参数类型标签
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamInt
	ParamBool
	ParamAddress
	ParamArray
)

// Param 合约调用参数
//
// 账本函数按位置接收异构参数，这里用带标签的联合体表达，
// 打包成ABI值时再转换为go-ethereum期望的具体类型。
type Param struct {
	Kind  ParamKind
	Str   string
	Int   *big.Int
	Bool  bool
	Addr  string
	Items []Param
}

// String 字符串参数
func String(s string) Param {
	return Param{Kind: ParamString, Str: s}
}

// Int64 整数参数
func Int64(v int64) Param {
	return Param{Kind: ParamInt, Int: big.NewInt(v)}
}

// BigInt 大整数参数
func BigInt(v *big.Int) Param {
	return Param{Kind: ParamInt, Int: new(big.Int).Set(v)}
}

// Bool 布尔参数
func Bool(b bool) Param {
	return Param{Kind: ParamBool, Bool: b}
}

// Address 地址参数
func Address(addr string) Param {
	return Param{Kind: ParamAddress, Addr: addr}
}

// Array 数组参数，元素类型必须一致
func Array(items ...Param) Param {
	return Param{Kind: ParamArray, Items: items}
}

// abiValue 转换为ABI打包值
func (p Param) abiValue() (interface{}, error) {
	switch p.Kind {
	case ParamString:
		return p.Str, nil
	case ParamInt:
		if p.Int == nil {
			return big.NewInt(0), nil
		}
		return p.Int, nil
	case ParamBool:
		return p.Bool, nil
	case ParamAddress:
		return common.HexToAddress(p.Addr), nil
	case ParamArray:
		return p.arrayValue()
	default:
		return nil, fmt.Errorf("unsupported param kind: %d", p.Kind)
	}
}

// arrayValue 数组参数按元素类型转换为具体切片
func (p Param) arrayValue() (interface{}, error) {
	if len(p.Items) == 0 {
		return []interface{}{}, nil
	}

	kind := p.Items[0].Kind
	for i, item := range p.Items {
		if item.Kind != kind {
			return nil, fmt.Errorf("mixed element kinds in array param at index %d", i)
		}
	}

	switch kind {
	case ParamString:
		values := make([]string, 0, len(p.Items))
		for _, item := range p.Items {
			values = append(values, item.Str)
		}
		return values, nil
	case ParamInt:
		values := make([]*big.Int, 0, len(p.Items))
		for _, item := range p.Items {
			v := item.Int
			if v == nil {
				v = big.NewInt(0)
			}
			values = append(values, v)
		}
		return values, nil
	case ParamBool:
		values := make([]bool, 0, len(p.Items))
		for _, item := range p.Items {
			values = append(values, item.Bool)
		}
		return values, nil
	case ParamAddress:
		values := make([]common.Address, 0, len(p.Items))
		for _, item := range p.Items {
			values = append(values, common.HexToAddress(item.Addr))
		}
		return values, nil
	default:
		return nil, fmt.Errorf("unsupported array element kind: %d", kind)
	}
}

// abiValues 批量转换参数
func abiValues(params []Param) ([]interface{}, error) {
	values := make([]interface{}, 0, len(params))
	for i, p := range params {
		v, err := p.abiValue()
		if err != nil {
			return nil, fmt.Errorf("failed to convert param %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
