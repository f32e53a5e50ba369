// Package bytecode provides the BugsWorld virtual machine's view of a
// compiled BL program: a flat array of integer words.
//
// Each instruction starts with an opcode word. Primitive instructions
// (MOVE, TURNLEFT, TURNRIGHT, INFECT, SKIP, HALT) occupy one word. Jumps
// occupy two: the opcode followed by an operand word holding the target
// address.
//
// # Architecture Overview
//
//   - Opcodes: the stable integer encodings shared with the BL compiler,
//     with metadata for each.
//
//   - Program: an immutable word array plus the precomputed set of
//     instruction-start addresses. Programs are read from and written to a
//     plain text format (a word count followed by the words) or a CBOR
//     envelope (".bwc" files).
//
//   - Resolver: given a program, a program counter and what the bug sees in
//     the cell ahead, follows jumps until it reaches the next primitive
//     instruction to execute.
//
//   - Disassembler: renders a program one instruction per line, optionally
//     marking the current program counter.
//
// # Conditional Jumps
//
// A conditional jump JUMP_IF_NOT_<condition> falls through to pc+2 when its
// condition holds and jumps to the operand address otherwise. RANDOM
// conditions ignore the sensed cell and flip a fair coin, supplied by the
// Resolver so tests can make it deterministic.
package bytecode
