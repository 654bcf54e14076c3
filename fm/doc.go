// Package fm describes feature models: a tree of features, each one being
// either mandatory or optional with regard to its parent, possibly gathered in
// OR and XOR groups, plus a flat list of cross-tree constraints.
//
// A model is usually read from an XML document:
//
//	<featureModel>
//	  <feature name="App">
//	    <feature name="Core" mandatory="true"/>
//	    <group type="or">
//	      <feature name="Search"/>
//	      <feature name="Filter"/>
//	    </group>
//	  </feature>
//	  <constraints>
//	    <constraint id="c1">
//	      <englishStatement>If Search is selected, Filter must be selected.</englishStatement>
//	    </constraint>
//	  </constraints>
//	</featureModel>
//
// or from its YAML counterpart (see ParseYAML).
//
// Feature names must be unique across the whole tree, and every feature must
// have a name: both properties are checked by Validate, which all parsers call
// before returning a model.
package fm
