// Package runtime provides the host object model that hookchain targets
// live in: classes with single inheritance, methods, constructors, class
// initializers, and object instances.
//
// The model is the host side of the redirection boundary. Every method
// and constructor carries an atomically swappable interception entry;
// when an entry is installed, all invocations through Object.Call,
// Class.CallStatic, Class.New, and Method.Invoke are routed through it
// instead of the original body. The original body stays reachable via
// CallBody for bypass invocations.
//
// Target identity is pointer identity: two methods with the same name
// and signature in different classes are distinct targets.
package runtime
