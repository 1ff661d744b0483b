package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectTargetTable injects the packaging target into the Lua state as a
// read-only global named "target". Manifests use it to vary package
// relationships per platform. Call before loading any manifest code.
func InjectTargetTable(L *lua.LState, target Target) error {
	targetTable := L.NewTable()

	L.SetField(targetTable, "os", lua.LString(target.OS))
	L.SetField(targetTable, "arch", lua.LString(target.Arch))

	L.SetField(targetTable, "is_linux", lua.LBool(target.IsLinux()))
	L.SetField(targetTable, "is_windows", lua.LBool(target.IsWindows()))
	L.SetField(targetTable, "is_darwin", lua.LBool(target.OS == OSDarwin))

	L.SetField(targetTable, "rpm_arch", lua.LString(RPMArch(target.Arch)))
	L.SetField(targetTable, "deb_arch", lua.LString(DebArch(target.Arch)))

	// Helper function: when(condition, value)
	// Returns value if condition is true, nil otherwise
	whenFunc := L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	})
	L.SetField(targetTable, "when", whenFunc)

	L.SetGlobal("target", makeReadOnly(L, targetTable))

	return nil
}

// makeReadOnly makes a Lua table read-only by creating a proxy table with a
// metatable. The proxy redirects reads to the original table but prevents
// all writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()

	L.SetField(mt, "__index", table)

	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("target table is read-only and cannot be modified")
		return 0
	}))

	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)

	return proxy
}
