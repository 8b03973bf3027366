package luahook

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go value to a Lua value. Unconvertible values are
// wrapped in userdata so scripts can at least pass them through.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int32:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []any:
		t := L.NewTable()
		for i, e := range x {
			t.RawSetInt(i+1, toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// toGo converts a Lua value to a Go value. Integral numbers come back
// as int64; tables become slices when they are contiguous arrays and
// maps otherwise.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break cycles
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	if n > 0 {
		count := 0
		isArray := true
		t.ForEach(func(k, _ lua.LValue) {
			count++
			kn, ok := k.(lua.LNumber)
			if !ok || float64(kn) != float64(int(kn)) || int(kn) < 1 || int(kn) > n {
				isArray = false
			}
		})
		if isArray && count == n {
			arr := make([]any, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		default:
			key = fmt.Sprintf("%v", k)
		}
		m[key] = toGoVisited(v, visited)
	})
	return m
}
