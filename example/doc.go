/*
Package main contains a command-line example for gxthermo.

The example shows how to:
  - configure a serial connection from command-line flags
  - register media callbacks (trace, state)
  - read thermal records in a loop and reconnect after failures
  - send console commands to the device while records are read
*/
package main
