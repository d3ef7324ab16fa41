// Package harness simulates module initialization against a manifest.
//
// A manifest only names hooks. The harness binds every hook name to a
// scripted hook that records its call on a logical clock and fails if its
// name is in the run's fail set. The bound registry then goes through the
// real engine: sort, run, and finalize on Success or Failed.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: kernel_vm_fails
//	description: "vm fails to initialize; kmem is torn down"
//	manifest: ../manifests/kernel.cue   # or inline modules:
//	modules:
//	  - name: kmem
//	    init: kmem_init
//	fail: [vm_init]
//	skip_finalize: false
//	table_limit: 0
//	run_id: test-run-001
//	expect:
//	  init: failed                # success | cycle | failed | allocation_failure
//	  init_cursor: 1
//	  order: [kmem, vm, sched, proc]
//	  cycle: [A, B]
//	  finalize: success           # success | failed | skipped
//	  finalize_cursor: 0
//	  calls: ["init:kmem", "init:vm!", "fini:kmem"]
//
// Exactly one of manifest and modules must be set; manifest paths are
// relative to the scenario file. Calls are "<stage>:<module>", with a
// trailing "!" for a call that failed. Every expect field except init is
// optional and only checked when present.
//
// # Deterministic Testing
//
// Scenarios run with a fixed run id and a fresh logical clock, so the same
// scenario always yields the same trace and golden files compare byte for
// byte.
package harness
