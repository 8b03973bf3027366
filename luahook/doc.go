// Package luahook runs hooker callbacks written in Lua.
//
// A hooker script is one Lua chunk that defines a global before
// and/or after function and an optional numeric priority global:
//
//	priority = 100
//
//	function before(call)
//	    if call.arg(1) == "secret" then
//	        call.return_and_skip("redacted")
//	    end
//	end
//
//	function after(call)
//	    if call.skipped() then
//	        call.set_result("observed")
//	    end
//	end
//
// Scripts execute in a sandboxed state: only the base, table, string,
// and math libraries are open, and the chunk loaders (load, dofile,
// loadfile) are removed. Each hooker owns its state; a mutex makes the
// hooker safe for concurrent dispatch, at the cost of serializing its
// callbacks.
package luahook
