// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
bio-repeat-eval measures how well repeat regions predicted in raw nanopore
signal agree with ground truth, per read and over a whole corpus.

Every read is identified by the base name of its signal dump in -signal.
The other per-read inputs are <dir>/<read>.txt (or .txt.gz):

  -align     alignment table: contig name, a metadata line, then
             "ref_position event_start event_end" rows
  -gt        ground-truth mask: one 0 or 1 per signal sample
  -repeats   (batch mode) repeat intervals "contig start end ..."
  -mapping   (batch mode) table mapping interval coordinates to events;
             defaults to the alignment table

make-maps marks the signal samples of every aligned position inside a -bed
interval, plus the unaligned stretch just before such a position.  Marks
are only ever added: when events overlap, a non-repeat event does not clear
samples an earlier repeat event marked.  Tools that paint events in order,
letting later events overwrite earlier ones, can produce smaller masks from
the same inputs.

Comparison is restricted to the aligned part of each signal.  Totals are
checkpointed after every read, so an interrupted run picks up where it
stopped; the checkpoint is removed once every read has been evaluated.

Sample usage:

  bio-repeat-eval eval \
      -signal reads/ -align alignments/ -gt repeat_maps/ \
      -bed repeats.bed -report per_read.tsv

  bio-repeat-eval make-maps \
      -signal reads/ -align alignments/ -bed repeats.bed -out repeat_maps/

  bio-repeat-eval status repeat-eval.checkpoint
*/
package main
