/*
Package canopy is about ordered forests with undo.

Package forest implements a forest of opaque nodes which keeps a flat render
order consistent with the nesting of nodes, under adding, removing and
reparenting whole subtrees. Package oplog records mutating calls on arbitrary
objects as events carrying their inverse call, and replays them in reverse
for undo and redo.

Command forestrepl is an interactive shell to experiment with both.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package canopy
